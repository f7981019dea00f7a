package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

var (
	// ErrMappingToDomainEventFailed is returned when a payload can not be decoded into its domain event.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for event types this package does not know.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts StorableEvents to DomainEvents, keeping their order.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) { //nolint:funlen,gocyclo
	payload := storableEvent.PayloadJSON

	switch storableEvent.EventType {
	case core.InventoryCreatedEventType:
		return unmarshalAs[core.InventoryCreated](payload)
	case core.InventoryRemovedEventType:
		return unmarshalAs[core.InventoryRemoved](payload)
	case core.InventoryAppendedEventType:
		return unmarshalAs[core.InventoryAppended](payload)
	case core.InventoryDecreasedEventType:
		return unmarshalAs[core.InventoryDecreased](payload)

	case core.BookBorrowedEventType:
		return unmarshalAs[core.BookBorrowed](payload)
	case core.ReservationBecameLoanEventType:
		return unmarshalAs[core.ReservationBecameLoan](payload)
	case core.BookReturnedEventType:
		return unmarshalAs[core.BookReturned](payload)
	case core.BookLostEventType:
		return unmarshalAs[core.BookLost](payload)
	case core.LoanPeriodExtendedEventType:
		return unmarshalAs[core.LoanPeriodExtended](payload)
	case core.LoanBecameOverdueEventType:
		return unmarshalAs[core.LoanBecameOverdue](payload)
	case core.LoanBecameShouldReturnSoonEventType:
		return unmarshalAs[core.LoanBecameShouldReturnSoon](payload)
	case core.LoansExtensionForbiddenEventType:
		return unmarshalAs[core.LoansExtensionForbidden](payload)
	case core.LoansExtensionAllowedEventType:
		return unmarshalAs[core.LoansExtensionAllowed](payload)

	case core.ReservationAddedEventType:
		return unmarshalAs[core.ReservationAdded](payload)
	case core.ReservationCanceledEventType:
		return unmarshalAs[core.ReservationCanceled](payload)
	case core.ReservationPickUpPeriodExpiredEventType:
		return unmarshalAs[core.ReservationPickUpPeriodExpired](payload)
	case core.BookReadyToPickUpEventType:
		return unmarshalAs[core.BookReadyToPickUp](payload)
	case core.BookBecameAvailableEventType:
		return unmarshalAs[core.BookBecameAvailable](payload)

	case core.BorrowingBookFailedEventType:
		return unmarshalAs[core.BorrowingBookFailed](payload)
	case core.ReturningBookFailedEventType:
		return unmarshalAs[core.ReturningBookFailed](payload)
	case core.ReservingBookFailedEventType:
		return unmarshalAs[core.ReservingBookFailed](payload)
	case core.CancelingReservationFailedEventType:
		return unmarshalAs[core.CancelingReservationFailed](payload)
	case core.WritingBookOffFailedEventType:
		return unmarshalAs[core.WritingBookOffFailed](payload)
	case core.ExtendingLoanPeriodFailedEventType:
		return unmarshalAs[core.ExtendingLoanPeriodFailed](payload)

	case core.BookAddedEventType:
		return unmarshalAs[core.BookAdded](payload)
	case core.BookRemovedEventType:
		return unmarshalAs[core.BookRemoved](payload)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalAs[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var event E

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}
