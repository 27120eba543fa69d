package observability

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the users API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec

	InvocationsTotal *prometheus.CounterVec

	DbOpDuration  *prometheus.HistogramVec
	DbErrorsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "usersapi",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "usersapi",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route", "status"},
		),
		InvocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "usersapi",
				Name:      "invocations_total",
				Help:      "Handler invocations by HTTP method and response status.",
			},
			[]string{"method", "status"},
		),
		DbOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "usersapi",
				Subsystem: "db",
				Name:      "op_duration_seconds",
				Help:      "DB operation latency (connect, list, create)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "usersapi",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestsDuration, m.InvocationsTotal, m.DbOpDuration, m.DbErrorsTotal)

	return m
}

// GinMiddleware records request counts and latency per route
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.RequestsDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// ObserveInvocation counts one handler invocation
func (m *Metrics) ObserveInvocation(method string, status int) {
	if m == nil {
		return
	}
	if method == "" {
		method = "none"
	}
	m.InvocationsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ObserveDB times fn and counts its failure, if any, under op
func (m *Metrics) ObserveDB(op string, fn func() error) error {
	if m == nil {
		return fn()
	}

	start := time.Now()
	err := fn()

	status := "ok"
	if err != nil {
		status = "error"
		m.DbErrorsTotal.WithLabelValues(op, ClassifyDBError(err)).Inc()
	}
	m.DbOpDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

// ClassifyDBError maps driver errors to a small set of metric classes
func ClassifyDBError(err error) string {
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case 18456:
			return "login_failed"
		case 4060:
			return "database_unavailable"
		case 515:
			return "not_null_violation"
		case 208:
			return "undefined_table"
		default:
			return "mssql_" + strconv.Itoa(int(msErr.Number))
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01":
			return "login_failed"
		case "23502":
			return "not_null_violation"
		case "42P01":
			return "undefined_table"
		default:
			return "pg_" + pgErr.Code
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrConstraint:
			return "constraint"
		case sqlite3.ErrCantOpen:
			return "connection"
		default:
			return "sqlite_" + strconv.Itoa(int(liteErr.Code))
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "connect"):
		return "connection"
	case strings.Contains(msg, "no such table"):
		return "undefined_table"
	default:
		return "unknown"
	}
}
