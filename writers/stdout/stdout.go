package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/goccy/go-json"
)

// all writers share one stream; messages must not interleave
var outputMu sync.Mutex

type Config struct{}

func (c *Config) Validate() error {
	return nil
}

// Stdout writes RECORD and STATE messages as JSON lines
type Stdout struct {
	config *Config
	stream types.StreamInterface
	out    io.Writer
}

func (s *Stdout) GetConfigRef() destination.Config {
	s.config = &Config{}
	return s.config
}

func (s *Stdout) Spec() any {
	return Config{}
}

func (s *Stdout) Type() string {
	return string(types.Stdout)
}

func (s *Stdout) Check(_ context.Context) error {
	return nil
}

func (s *Stdout) Setup(stream types.StreamInterface, _ *destination.Options) error {
	s.stream = stream
	if s.out == nil {
		s.out = os.Stdout
	}
	return nil
}

func (s *Stdout) Write(_ context.Context, record types.Record) error {
	extracted := time.Now().UTC()
	return s.emit(types.Message{
		Type:          types.RecordMessage,
		Stream:        s.stream.Name(),
		Record:        record,
		TimeExtracted: &extracted,
	})
}

func (s *Stdout) WriteState(_ context.Context, state *types.State) error {
	return s.emit(types.Message{
		Type:  types.StateMessage,
		State: state,
	})
}

func (s *Stdout) Close(_ context.Context) error {
	return nil
}

func (s *Stdout) emit(message types.Message) error {
	line, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %s", message.Type, err)
	}

	outputMu.Lock()
	defer outputMu.Unlock()
	_, err = s.out.Write(append(line, '\n'))
	return err
}

func init() {
	destination.RegisteredWriters[types.Stdout] = func() destination.Writer {
		return new(Stdout)
	}
}
