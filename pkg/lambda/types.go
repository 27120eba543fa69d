package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// requestIDHeader is consulted when the event carries no request id
const requestIDHeader = "X-Request-ID"

// Request represents a generic HTTP request for serverless functions
type Request struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"query_params"`
	Body        []byte            `json:"body"`
	PathParams  map[string]string `json:"path_params"`
	RequestID   string            `json:"request_id"`
}

// Response represents a generic HTTP response for serverless functions
type Response struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
}

// HandlerFunc is a framework-agnostic handler interface
type HandlerFunc func(ctx context.Context, req *Request) *Response

// Header returns a request header, matched case-insensitively
func (r *Request) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// FromAPIGatewayProxy converts an API Gateway REST proxy event
func FromAPIGatewayProxy(event events.APIGatewayProxyRequest) (*Request, error) {
	body, err := decodeBody(event.Body, event.IsBase64Encoded)
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Headers:     event.Headers,
		QueryParams: event.QueryStringParameters,
		Body:        body,
		PathParams:  event.PathParameters,
		RequestID:   event.RequestContext.RequestID,
	}, nil
}

// FromAPIGatewayV2HTTP converts an API Gateway HTTP API (payload 2.0) event
func FromAPIGatewayV2HTTP(event events.APIGatewayV2HTTPRequest) (*Request, error) {
	body, err := decodeBody(event.Body, event.IsBase64Encoded)
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:      event.RequestContext.HTTP.Method,
		Path:        event.RawPath,
		Headers:     event.Headers,
		QueryParams: event.QueryStringParameters,
		Body:        body,
		PathParams:  event.PathParameters,
		RequestID:   event.RequestContext.RequestID,
	}, nil
}

// ToAPIGatewayProxy converts the response for a REST proxy integration
func (r *Response) ToAPIGatewayProxy() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       string(r.Body),
	}
}

// ToAPIGatewayV2HTTP converts the response for an HTTP API integration
func (r *Response) ToAPIGatewayV2HTTP() events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       string(r.Body),
	}
}

// payloadVersion is the part of an API Gateway event that tells the two
// payload formats apart
type payloadVersion struct {
	Version string `json:"version"`
}

// EventHandler adapts h to the raw API Gateway event. REST proxy (payload 1.0)
// and HTTP API (payload 2.0) events are both accepted and answered in the
// format they arrived in.
func EventHandler(h HandlerFunc) func(ctx context.Context, event json.RawMessage) (interface{}, error) {
	return func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		var pv payloadVersion
		if err := json.Unmarshal(event, &pv); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}

		if pv.Version == "2.0" {
			var v2 events.APIGatewayV2HTTPRequest
			if err := json.Unmarshal(event, &v2); err != nil {
				return nil, fmt.Errorf("failed to decode HTTP API event: %w", err)
			}
			req, err := FromAPIGatewayV2HTTP(v2)
			if err != nil {
				return decodeFailure(err).ToAPIGatewayV2HTTP(), nil
			}
			return h(ctx, withRequestID(req)).ToAPIGatewayV2HTTP(), nil
		}

		var v1 events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &v1); err != nil {
			return nil, fmt.Errorf("failed to decode proxy event: %w", err)
		}
		req, err := FromAPIGatewayProxy(v1)
		if err != nil {
			return decodeFailure(err).ToAPIGatewayProxy(), nil
		}
		return h(ctx, withRequestID(req)).ToAPIGatewayProxy(), nil
	}
}

func withRequestID(req *Request) *Request {
	if req.RequestID == "" {
		req.RequestID = req.Header(requestIDHeader)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	return req
}

func decodeFailure(err error) *Response {
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Headers:    map[string]string{"Content-Type": "text/plain"},
		Body:       []byte("Error: " + err.Error()),
	}
}

func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 body: %w", err)
	}
	return decoded, nil
}
