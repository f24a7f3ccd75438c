package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coachdesk_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	MarksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coachdesk_attendance_marks_total",
			Help: "Attendance mark writes by outcome",
		},
		[]string{"result"},
	)

	OccurrencesExpanded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coachdesk_occurrences_expanded_total",
			Help: "Occurrences produced by the expander",
		},
	)

	ReportsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coachdesk_weekly_reports_total",
			Help: "Weekly attendance reports by outcome",
		},
		[]string{"result"},
	)

	CampaignMails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coachdesk_campaign_mails_total",
			Help: "Campaign mails by outcome",
		},
		[]string{"result"},
	)
)

// mark outcomes
const (
	ResultCreated = "created"
	ResultUpdated = "updated"
	ResultFailed  = "failed"
	ResultSent    = "sent"
	ResultSkipped = "skipped"
)

// Middleware records APIRequestDuration labelled with the route template, so
// ids in the path do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		APIRequestDuration.WithLabelValues(
			path,
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// GET /metrics
func RegisterRoutes(r gin.IRoutes) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
