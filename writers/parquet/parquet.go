package parquet

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
	"github.com/goccy/go-json"
	pqgo "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

// Row is the on-disk layout; records are schemaless so the payload is kept as JSON
type Row struct {
	OlakeID        string    `parquet:"_olake_id"`
	OlakeTimestamp time.Time `parquet:"_olake_timestamp,timestamp(microsecond)"`
	Data           string    `parquet:"data,json"`
}

// Parquet destination writes one file per stream per run:
// local_path/namespace/stream/<ulid>.parquet. With s3_bucket set the finished
// file is also uploaded under s3_path/namespace/stream/.
type Parquet struct {
	config   *Config
	stream   types.StreamInterface
	fileName string
	filePath string
	file     *os.File
	writer   *pqgo.GenericWriter[Row]
	records  int64
	s3Client *s3.S3
}

// setup s3 client if a bucket is configured
func (p *Parquet) initS3Writer() error {
	if p.config.Bucket == "" || p.s3Client != nil {
		return nil
	}

	s3Config := aws.Config{
		Region: aws.String(p.config.Region),
	}
	if p.config.AccessKey != "" && p.config.SecretKey != "" {
		s3Config.Credentials = credentials.NewStaticCredentials(p.config.AccessKey, p.config.SecretKey, "")
	}
	if p.config.S3Endpoint != "" {
		s3Config.Endpoint = aws.String(p.config.S3Endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(&s3Config)
	if err != nil {
		return fmt.Errorf("failed to create AWS session: %s", err)
	}
	p.s3Client = s3.New(sess)
	return nil
}

func (p *Parquet) GetConfigRef() destination.Config {
	p.config = &Config{}
	return p.config
}

func (p *Parquet) Spec() any {
	return Config{}
}

func (p *Parquet) Type() string {
	return string(types.Parquet)
}

// Check validates the local path is writable and, if configured, the bucket is reachable
func (p *Parquet) Check(ctx context.Context) error {
	if err := os.MkdirAll(p.config.Path, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create local path: %s", err)
	}

	scratch, err := os.CreateTemp(p.config.Path, ".olake-check-*")
	if err != nil {
		return fmt.Errorf("local path is not writable: %s", err)
	}
	scratch.Close()
	if err := os.Remove(scratch.Name()); err != nil {
		return err
	}

	if err := p.initS3Writer(); err != nil {
		return err
	}
	if p.s3Client != nil {
		if _, err := p.s3Client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.config.Bucket)}); err != nil {
			return fmt.Errorf("failed to validate S3 bucket[%s]: %s", p.config.Bucket, err)
		}
	}
	return nil
}

// Setup opens a fresh file for the stream
func (p *Parquet) Setup(stream types.StreamInterface, _ *destination.Options) error {
	directoryPath := filepath.Join(p.config.Path, stream.Namespace(), stream.Name())
	if err := os.MkdirAll(directoryPath, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directories[%s]: %s", directoryPath, err)
	}

	if err := p.initS3Writer(); err != nil {
		return fmt.Errorf("failed to setup S3 writer: %s", err)
	}

	p.fileName = fmt.Sprintf("%s.%s", utils.ULID(), constants.ParquetFileExt)
	p.filePath = filepath.Join(directoryPath, p.fileName)
	file, err := os.Create(p.filePath)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %s", err)
	}

	p.file = file
	p.stream = stream
	p.writer = pqgo.NewGenericWriter[Row](file, pqgo.Compression(codec(p.config.Compression)))
	return nil
}

func (p *Parquet) Write(_ context.Context, record types.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %s", err)
	}

	olakeID := record.KeyHash(p.stream.KeyProperties()...)
	if olakeID == "" {
		olakeID = utils.ULID()
	}

	if _, err := p.writer.Write([]Row{{OlakeID: olakeID, OlakeTimestamp: time.Now().UTC(), Data: string(data)}}); err != nil {
		return fmt.Errorf("failed to write record: %s", err)
	}
	p.records++
	return nil
}

// WriteState flushes buffered rows so data up to the checkpoint is on disk
func (p *Parquet) WriteState(_ context.Context, _ *types.State) error {
	if err := p.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush row group: %s", err)
	}
	return nil
}

// Close finalizes the file and removes it when nothing was written
func (p *Parquet) Close(ctx context.Context) error {
	if p.writer == nil {
		return nil
	}

	err := utils.ErrExecSequential(
		utils.ErrExecFormat("failed to close writer: %s", p.writer.Close),
		utils.ErrExecFormat("failed to close parquet file: %s", p.file.Close),
	)
	if err != nil {
		return err
	}

	if p.records == 0 {
		logger.Debugf("removing empty parquet file %s", p.filePath)
		return os.Remove(p.filePath)
	}
	logger.Infof("wrote %d records of stream %s to %s", p.records, p.stream.ID(), p.filePath)

	if p.s3Client == nil {
		return nil
	}
	return p.upload(ctx)
}

func (p *Parquet) upload(ctx context.Context) error {
	file, err := os.Open(p.filePath)
	if err != nil {
		return fmt.Errorf("failed to open file for upload: %s", err)
	}
	defer file.Close()

	remotePath := remoteKey(p.config.Prefix, p.stream, p.fileName)
	_, err = p.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(remotePath),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %s", err)
	}

	logger.Infof("uploaded %s to s3://%s/%s", p.filePath, p.config.Bucket, remotePath)
	return nil
}

// remoteKey uses forward slashes regardless of the local OS
func remoteKey(prefix string, stream types.StreamInterface, fileName string) string {
	return path.Join(prefix, stream.Namespace(), stream.Name(), fileName)
}

func codec(name string) compress.Codec {
	switch name {
	case "zstd":
		return &pqgo.Zstd
	case "gzip":
		return &pqgo.Gzip
	case "none":
		return &pqgo.Uncompressed
	default:
		return &pqgo.Snappy
	}
}

func init() {
	destination.RegisteredWriters[types.Parquet] = func() destination.Writer {
		return new(Parquet)
	}
}
