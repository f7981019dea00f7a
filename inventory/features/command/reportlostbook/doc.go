// Package reportlostbook implements the Report Lost Book use case.
package reportlostbook
