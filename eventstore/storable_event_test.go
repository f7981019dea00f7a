package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

//nolint:funlen
func Test_BuildStorableEvent_ErrorCases(t *testing.T) {
	validTime := time.Now()
	validPayloadJSON := []byte(`{"BookID": "b1", "ItemID": "i1"}`)
	validMetadataJSON := []byte(`{"MessageID": "m1"}`)

	tests := []struct {
		name         string
		payloadJSON  []byte
		metadataJSON []byte
		expectedErr  error
	}{
		{
			name:         "invalid payload JSON",
			payloadJSON:  []byte(`{"BookID": b1}`),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "invalid metadata JSON",
			payloadJSON:  validPayloadJSON,
			metadataJSON: []byte(`{"MessageID": }`),
			expectedErr:  ErrInvalidMetadataJSON,
		},
		{
			name:         "empty payload JSON",
			payloadJSON:  []byte(``),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "nil metadata JSON",
			payloadJSON:  validPayloadJSON,
			metadataJSON: nil,
			expectedErr:  ErrInvalidMetadataJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			event, err := BuildStorableEvent("InventoryAppended", validTime, tt.payloadJSON, tt.metadataJSON)

			// assert
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, StorableEvent{}, event)
		})
	}
}

func Test_BuildStorableEvent_Success(t *testing.T) {
	// arrange
	occurredAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"BookID": "b1", "ItemID": "i1"}`)
	metadata := []byte(`{"MessageID": "m1"}`)

	// act
	event, err := BuildStorableEvent("InventoryAppended", occurredAt, payload, metadata)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "InventoryAppended", event.EventType)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.Equal(t, payload, event.PayloadJSON)
	assert.Equal(t, metadata, event.MetadataJSON)
}

func Test_BuildStorableEventWithEmptyMetadata(t *testing.T) {
	// act
	event, err := BuildStorableEventWithEmptyMetadata("InventoryCreated", time.Now(), []byte(`{"BookID": "b1"}`))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []byte("{}"), event.MetadataJSON)
}

func Test_BuildStorableEvent_EmptyEventType(t *testing.T) {
	// act
	_, err := BuildStorableEvent("", time.Now(), []byte(`{}`), []byte(`{}`))

	// assert
	assert.ErrorIs(t, err, ErrEmptyEventType)
}
