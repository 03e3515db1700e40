package submission

// Presenter is whatever shows the outcome of a submission to the user.
type Presenter interface {
	ReportError(message, category string)
	ReportSuccess(message string)
	ClearMessages()
	SetBusy(busy bool)
}

const (
	CategoryError     = "error-message"
	CategoryRateLimit = "rate-limit-warning"
)

type nopPresenter struct{}

func (nopPresenter) ReportError(string, string) {}
func (nopPresenter) ReportSuccess(string)       {}
func (nopPresenter) ClearMessages()             {}
func (nopPresenter) SetBusy(bool)               {}
