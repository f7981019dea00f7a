// Package satisfyreservation implements the Satisfy Reservation use case.
//
// Copies arriving through appendinventory or returnbook are earmarked automatically.
// This slice exists for operators and schedulers that earmark explicitly.
package satisfyreservation
