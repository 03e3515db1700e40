package logging

import (
	"context"
	"fmt"

	"cloud.google.com/go/logging"
	log "github.com/sirupsen/logrus"
)

// CloudHook forwards logrus entries to Google Cloud Logging.
type CloudHook struct {
	client *logging.Client
	logger *logging.Logger
}

var severities = map[log.Level]logging.Severity{
	log.TraceLevel: logging.Debug,
	log.DebugLevel: logging.Debug,
	log.InfoLevel:  logging.Info,
	log.WarnLevel:  logging.Warning,
	log.ErrorLevel: logging.Error,
	log.FatalLevel: logging.Critical,
	log.PanicLevel: logging.Emergency,
}

func NewCloudHook(ctx context.Context, projectID, logID string) (*CloudHook, error) {
	c, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloud logging client: %w", err)
	}

	return &CloudHook{client: c, logger: c.Logger(logID)}, nil
}

func (h *CloudHook) Levels() []log.Level { return log.AllLevels }

func (h *CloudHook) Fire(e *log.Entry) error {
	h.logger.Log(logging.Entry{
		Timestamp: e.Time,
		Severity:  severities[e.Level],
		Payload:   payload(e),
	})

	return nil
}

func (h *CloudHook) Close() {
	_ = h.logger.Flush()
	_ = h.client.Close()
}

func payload(e *log.Entry) map[string]interface{} {
	p := make(map[string]interface{}, len(e.Data)+1)

	for k, v := range e.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}

		p[k] = v
	}

	p["message"] = e.Message

	return p
}
