package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/furfolio/enginekit/pkg/audit"
)

// OpenSearchSink indexes events through the bulk API, one document per
// event keyed by the event ID.
type OpenSearchSink struct {
	client  *opensearch.Client
	index   string
	refresh string
}

var _ audit.BatchSink = (*OpenSearchSink)(nil)

// OpenSearchOption configures an OpenSearchSink.
type OpenSearchOption func(*OpenSearchSink)

// WithRefresh sets the bulk refresh policy ("true", "false", "wait_for").
func WithRefresh(policy string) OpenSearchOption {
	return func(s *OpenSearchSink) { s.refresh = policy }
}

func NewOpenSearchSink(client *opensearch.Client, index string, opts ...OpenSearchOption) (*OpenSearchSink, error) {
	if client == nil {
		return nil, errors.Join(ErrBulkRequest, errors.New("nil client"))
	}
	if index == "" {
		return nil, ErrMissingIndex
	}
	s := &OpenSearchSink{client: client, index: index}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *OpenSearchSink) TestMode() bool { return false }

func (s *OpenSearchSink) LogEvent(ctx context.Context, e audit.Event) error {
	return s.LogBatch(ctx, []audit.Event{e})
}

type bulkAction struct {
	Index bulkMeta `json:"index"`
}

type bulkMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

func (s *OpenSearchSink) LogBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	body, err := s.encode(events)
	if err != nil {
		return errors.Join(ErrBulkRequest, err)
	}

	req := opensearchapi.BulkRequest{Index: s.index, Body: body, Refresh: s.refresh}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.Join(ErrBulkRequest, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return errors.Join(ErrBulkRequest, fmt.Errorf("status %d: %s", res.StatusCode, msg))
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return errors.Join(ErrBulkRequest, err)
	}
	if !br.Errors {
		return nil
	}

	var errs []error
	for _, item := range br.Items {
		for _, r := range item {
			if r.Error != nil {
				errs = append(errs, fmt.Errorf("%s: %s", r.Error.Type, r.Error.Reason))
			}
		}
	}
	return errors.Join(append([]error{ErrBulkRejected}, errs...)...)
}

func (s *OpenSearchSink) encode(events []audit.Event) (io.Reader, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range events {
		if err := enc.Encode(bulkAction{Index: bulkMeta{Index: s.index, ID: e.ID.String()}}); err != nil {
			return nil, err
		}
		if err := enc.Encode(newDocument(e)); err != nil {
			return nil, err
		}
	}
	return &buf, nil
}
