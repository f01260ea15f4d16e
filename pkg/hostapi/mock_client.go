package hostapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-dataview/components/dataset"
	"github.com/goliatone/go-dataview/components/teams"
	"github.com/goliatone/go-dataview/components/webhooks"
)

// Operation names recorded by MockClient.
const (
	OpAddMember        = "add_member"
	OpUpdateRole       = "update_role"
	OpAddRole          = "add_role"
	OpRemoveMembers    = "remove_members"
	OpCreateWebhook    = "create_webhook"
	OpDeleteWebhooks   = "delete_webhooks"
	OpSetWebhookStatus = "set_webhook_status"
	OpFetchDataset     = "fetch_dataset"
)

// MockData seeds a MockClient.
type MockData struct {
	Datasets map[string][]dataset.Record
	// Failures makes an operation return the given error.
	Failures map[string]error
}

// Call is one recorded request.
type Call struct {
	Op   string
	Args []any
}

// MockClient implements Client in memory for demos and tests.
type MockClient struct {
	mu    sync.RWMutex
	data  MockData
	calls []Call
}

func NewMockClient(data MockData) *MockClient {
	if data.Datasets == nil {
		data.Datasets = map[string][]dataset.Record{}
	}
	if data.Failures == nil {
		data.Failures = map[string]error{}
	}
	return &MockClient{data: data}
}

// Fail makes op return err from now on. A nil err clears the failure.
func (c *MockClient) Fail(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.data.Failures, op)
		return
	}
	c.data.Failures[op] = err
}

// SetDataset replaces a named dataset.
func (c *MockClient) SetDataset(name string, records []dataset.Record) {
	c.mu.Lock()
	c.data.Datasets[name] = cloneRecords(records)
	c.mu.Unlock()
}

// Calls returns the recorded requests in order.
func (c *MockClient) Calls() []Call {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Call(nil), c.calls...)
}

func (c *MockClient) record(op string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: op, Args: args})
	return c.data.Failures[op]
}

func (c *MockClient) AddMember(_ context.Context, member teams.Member) error {
	return c.record(OpAddMember, member)
}

func (c *MockClient) UpdateRole(_ context.Context, memberID, role string) error {
	return c.record(OpUpdateRole, memberID, role)
}

func (c *MockClient) AddRole(_ context.Context, role teams.Role) error {
	return c.record(OpAddRole, role)
}

func (c *MockClient) RemoveMembers(_ context.Context, ids []string) error {
	return c.record(OpRemoveMembers, append([]string(nil), ids...))
}

func (c *MockClient) CreateWebhook(_ context.Context, hook webhooks.Webhook) error {
	return c.record(OpCreateWebhook, hook)
}

func (c *MockClient) DeleteWebhooks(_ context.Context, ids []string) error {
	return c.record(OpDeleteWebhooks, append([]string(nil), ids...))
}

func (c *MockClient) SetWebhookStatus(_ context.Context, id string, status webhooks.Status) error {
	return c.record(OpSetWebhookStatus, id, status)
}

// FetchDataset returns a copy of the seeded dataset.
func (c *MockClient) FetchDataset(_ context.Context, name string) ([]dataset.Record, error) {
	if err := c.record(OpFetchDataset, name); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	records, ok := c.data.Datasets[name]
	if !ok {
		return nil, &APIError{Status: 404, Message: fmt.Sprintf("dataset %q not found", name)}
	}
	return cloneRecords(records), nil
}

func cloneRecords(records []dataset.Record) []dataset.Record {
	out := make([]dataset.Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}
