// Package service drives a ledger import: it reads the export, resolves
// categories, classifies every row and hands the assembled ledger to the
// store as one batch.
package service
