package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// deniedMetadataKeys are stripped from Extra by Sanitize. Matching is case-insensitive.
var deniedMetadataKeys = map[string]struct{}{
	"internal": {},
	"secrets":  {},
	"apikey":   {},
	"token":    {},
	"password": {},
}

// ThreadMetadata holds the known optional thread attributes. Keys the engine does not
// recognize are kept in Extra and written back unchanged.
type ThreadMetadata struct {
	Topic     *string  `json:"topic,omitempty"`
	ListingID *string  `json:"listingId,omitempty"`
	OrderID   *string  `json:"orderId,omitempty"`
	ProjectID *string  `json:"projectId,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MessageMetadata holds the known optional message attributes.
type MessageMetadata struct {
	// AutoReply marks a generated reply so it never schedules another one.
	AutoReply       bool    `json:"autoReply,omitempty"`
	ClientMessageID *string `json:"clientMessageId,omitempty"`
	ReplyToID       *string `json:"replyToId,omitempty"`
	// Event names the transition a system message narrates, e.g. "support.escalated".
	Event *string `json:"event,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// CaseMetadata holds the known optional support case attributes.
type CaseMetadata struct {
	Source           *string  `json:"source,omitempty"`
	ExternalTicketID *string  `json:"externalTicketId,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	EscalationCount  int      `json:"escalationCount,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type threadMetadataFields ThreadMetadata
type messageMetadataFields MessageMetadata
type caseMetadataFields CaseMetadata

func (m ThreadMetadata) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(threadMetadataFields(m), m.Extra)
}

func (m *ThreadMetadata) UnmarshalJSON(data []byte) error {
	var fields threadMetadataFields
	extra, err := unmarshalWithExtra(data, &fields)
	if err != nil {
		return fmt.Errorf("thread metadata: %w", err)
	}
	*m = ThreadMetadata(fields)
	m.Extra = extra
	return nil
}

// Sanitize returns a copy with denied keys removed from Extra.
func (m ThreadMetadata) Sanitize() ThreadMetadata {
	m.Extra = sanitizeExtra(m.Extra)
	return m
}

func (m MessageMetadata) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(messageMetadataFields(m), m.Extra)
}

func (m *MessageMetadata) UnmarshalJSON(data []byte) error {
	var fields messageMetadataFields
	extra, err := unmarshalWithExtra(data, &fields)
	if err != nil {
		return fmt.Errorf("message metadata: %w", err)
	}
	*m = MessageMetadata(fields)
	m.Extra = extra
	return nil
}

func (m MessageMetadata) Sanitize() MessageMetadata {
	m.Extra = sanitizeExtra(m.Extra)
	return m
}

func (m CaseMetadata) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(caseMetadataFields(m), m.Extra)
}

func (m *CaseMetadata) UnmarshalJSON(data []byte) error {
	var fields caseMetadataFields
	extra, err := unmarshalWithExtra(data, &fields)
	if err != nil {
		return fmt.Errorf("case metadata: %w", err)
	}
	*m = CaseMetadata(fields)
	m.Extra = extra
	return nil
}

func (m CaseMetadata) Sanitize() CaseMetadata {
	m.Extra = sanitizeExtra(m.Extra)
	return m
}

// marshalWithExtra encodes the known fields and merges extra underneath them.
// Known fields win on key collision.
func marshalWithExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}

	merged := make(map[string]json.RawMessage, len(extra)+4)
	for k, v := range extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// unmarshalWithExtra decodes data into target and returns every top-level key that
// target does not declare.
func unmarshalWithExtra(data []byte, target any) (map[string]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return nil, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, key := range jsonKeys(target) {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// jsonKeys lists the json names declared on the struct target points to.
func jsonKeys(target any) []string {
	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

func sanitizeExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		if _, denied := deniedMetadataKeys[strings.ToLower(k)]; denied {
			continue
		}
		out[k] = v
	}
	return out
}

// MetadataSchemas describes the known fields of each metadata type. Unknown keys are
// allowed and passed through.
func MetadataSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	return map[string]*jsonschema.Schema{
		"thread":  reflector.Reflect(&threadMetadataFields{}),
		"message": reflector.Reflect(&messageMetadataFields{}),
		"case":    reflector.Reflect(&caseMetadataFields{}),
	}
}
