package driver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
)

// PageSize is shared by every resource; a page shorter than this ends a fetch
const PageSize = 100

// FilterDialect selects how a greater-than filter is encoded in the query
type FilterDialect string

const (
	// FlatFilter encodes filter=<col>><val>
	FlatFilter FilterDialect = "V1"
	// StructuredFilter encodes where={"<col>":{"$gt":"<val>"}}
	StructuredFilter FilterDialect = "V2"
)

// Endpoint describes how one resource is requested and unwrapped
type Endpoint struct {
	Path string
	// EnvelopeKey names the key holding the record array; empty means the
	// body itself is the array
	EnvelopeKey string
	Dialect     FilterDialect
}

type RecordFn func(ctx context.Context, record types.Record) error

var pageParam = regexp.MustCompile(`([?&]page=)(\d+)`)

// AddPagination starts a URL at page 0, or moves an already paginated URL to
// the next page; limit is left untouched
func AddPagination(rawURL string) string {
	match := pageParam.FindStringSubmatchIndex(rawURL)
	if match == nil {
		separator := utils.Ternary(strings.Contains(rawURL, "?"), "&", "?").(string)
		return fmt.Sprintf("%s%spage=0&limit=%d", rawURL, separator, PageSize)
	}

	page, err := strconv.Atoi(rawURL[match[4]:match[5]])
	if err != nil {
		// digits only; overflow is the one failure
		page = 0
	}
	return rawURL[:match[4]] + strconv.Itoa(page+1) + rawURL[match[5]:]
}

// AddFilter appends a greater-than filter on column in the given dialect
func AddFilter(rawURL string, dialect FilterDialect, column string, value any) string {
	switch dialect {
	case FlatFilter:
		return fmt.Sprintf("%s&filter=%s>%s", rawURL, column, formatValue(value))
	default:
		return fmt.Sprintf(`%s&where={%s:{"$gt":%s}}`, rawURL, strconv.Quote(column), strconv.Quote(formatValue(value)))
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Paginator walks the pages of one resource
type Paginator struct {
	transport   Transport
	endpointURL func(path string) string
}

func NewPaginator(transport Transport, endpointURL func(path string) string) *Paginator {
	return &Paginator{transport: transport, endpointURL: endpointURL}
}

// Fetch hands every record of the resource to fn, in page order and then in
// within-page order, one page in memory at a time.
//
// A nil filter (or one without a value) fetches the whole resource. The fetch
// ends after the first page holding fewer than PageSize records; a 500 from
// the server counts as an empty page. An error returned by fn stops the fetch
// and is returned as is.
func (p *Paginator) Fetch(ctx context.Context, endpoint Endpoint, filter *types.Filter, fn RecordFn) error {
	rawURL := p.endpointURL(endpoint.Path)
	if filter != nil && filter.Value != nil {
		rawURL = AddFilter(rawURL, endpoint.Dialect, filter.Column, filter.Value)
	}

	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rawURL = AddPagination(rawURL)
		records, err := p.fetchPage(ctx, endpoint, rawURL)
		if err != nil {
			return fmt.Errorf("failed to fetch page %d of %s: %w", page, endpoint.Path, err)
		}
		logger.Debugf("fetched page %d of %s with %d records", page, endpoint.Path, len(records))

		for _, record := range records {
			if err := fn(ctx, record); err != nil {
				return err
			}
		}

		// TODO: a 500 on a non-final page ends the fetch here as if the
		// resource were exhausted; needs a way to tell it apart from a
		// legitimately empty result before it can be retried
		if len(records) < PageSize {
			return nil
		}
	}
}

func (p *Paginator) fetchPage(ctx context.Context, endpoint Endpoint, rawURL string) ([]types.Record, error) {
	payload, err := p.transport.Get(ctx, rawURL)
	if errors.Is(err, constants.ErrEmptyResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return unwrap(payload, endpoint.EnvelopeKey)
}

// unwrap extracts the record array from a response body
func unwrap(payload any, envelopeKey string) ([]types.Record, error) {
	if envelopeKey != "" {
		envelope, ok := payload.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected object with key[%s], got %T", constants.ErrEnvelopeMissing, envelopeKey, payload)
		}
		inner, found := envelope[envelopeKey]
		if !found {
			return nil, fmt.Errorf("%w: key[%s]", constants.ErrEnvelopeMissing, envelopeKey)
		}
		payload = inner
	}

	if payload == nil {
		return nil, nil
	}

	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array of records, got %T", payload)
	}

	records := make([]types.Record, 0, len(items))
	for idx, item := range items {
		object, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected record object at index %d, got %T", idx, item)
		}
		records = append(records, types.Record(object))
	}
	return records, nil
}
