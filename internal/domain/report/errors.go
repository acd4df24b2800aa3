package report

import "errors"

var (
	ErrInvalidGroupBy   = errors.New("unsupported group by")
	ErrExportTooLarge   = errors.New("export exceeds the maximum number of rows")
	ErrReportGeneration = errors.New("failed to generate report")
)
