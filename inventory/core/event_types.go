package core

// EventTypes lists every event type an inventory stream contains, failure events included.
func EventTypes() []string {
	return []string{
		InventoryCreatedEventType,
		InventoryRemovedEventType,
		InventoryAppendedEventType,
		InventoryDecreasedEventType,
		BookBorrowedEventType,
		ReservationBecameLoanEventType,
		BookReturnedEventType,
		BookLostEventType,
		LoanPeriodExtendedEventType,
		LoanBecameOverdueEventType,
		LoanBecameShouldReturnSoonEventType,
		LoansExtensionForbiddenEventType,
		LoansExtensionAllowedEventType,
		ReservationAddedEventType,
		ReservationCanceledEventType,
		ReservationPickUpPeriodExpiredEventType,
		BookReadyToPickUpEventType,
		BookBecameAvailableEventType,
		BorrowingBookFailedEventType,
		ReturningBookFailedEventType,
		ReservingBookFailedEventType,
		CancelingReservationFailedEventType,
		WritingBookOffFailedEventType,
		ExtendingLoanPeriodFailedEventType,
	}
}
