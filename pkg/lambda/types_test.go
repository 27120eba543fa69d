package lambda

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAPIGatewayProxy(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Path:       "/users",
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       `{"firstName":"Ada"}`,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "req-1",
		},
	}

	req, err := FromAPIGatewayProxy(event)
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/users", req.Path)
	assert.Equal(t, `{"firstName":"Ada"}`, string(req.Body))
	assert.Equal(t, "req-1", req.RequestID)
	assert.Equal(t, "application/json", req.Header("Content-Type"))
}

func TestFromAPIGatewayProxy_Base64Body(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod:      "POST",
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"email":"ada@example.com"}`)),
		IsBase64Encoded: true,
	}

	req, err := FromAPIGatewayProxy(event)
	require.NoError(t, err)
	assert.Equal(t, `{"email":"ada@example.com"}`, string(req.Body))

	event.Body = "%%%"
	_, err = FromAPIGatewayProxy(event)
	assert.Error(t, err)
}

func TestFromAPIGatewayV2HTTP(t *testing.T) {
	event := events.APIGatewayV2HTTPRequest{
		RawPath: "/users",
		Body:    "",
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: "req-2",
			HTTP:      events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: "GET"},
		},
	}

	req, err := FromAPIGatewayV2HTTP(event)
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/users", req.Path)
	assert.Equal(t, "req-2", req.RequestID)
	assert.Empty(t, req.Body)
}

func TestResponseConversion(t *testing.T) {
	resp := &Response{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(`{"userId":1}`),
	}

	proxy := resp.ToAPIGatewayProxy()
	assert.Equal(t, 200, proxy.StatusCode)
	assert.Equal(t, `{"userId":1}`, proxy.Body)
	assert.Equal(t, "application/json", proxy.Headers["Content-Type"])

	v2 := resp.ToAPIGatewayV2HTTP()
	assert.Equal(t, 200, v2.StatusCode)
	assert.Equal(t, `{"userId":1}`, v2.Body)
}

func echoHandler(seen **Request) HandlerFunc {
	return func(ctx context.Context, req *Request) *Response {
		*seen = req
		return &Response{
			StatusCode: http.StatusMethodNotAllowed,
			Headers:    map[string]string{"Content-Type": "text/plain"},
		}
	}
}

func TestEventHandler_ProxyPayload(t *testing.T) {
	var seen *Request
	h := EventHandler(echoHandler(&seen))

	out, err := h(context.Background(), []byte(`{
		"httpMethod": "PUT",
		"path": "/users",
		"headers": {"x-request-id": "from-header"},
		"body": "{}"
	}`))
	require.NoError(t, err)

	resp, ok := out.(events.APIGatewayProxyResponse)
	require.True(t, ok, "payload 1.0 is answered with a proxy response")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "PUT", seen.Method)
	assert.Equal(t, "from-header", seen.RequestID)
}

func TestEventHandler_HTTPAPIPayload(t *testing.T) {
	var seen *Request
	h := EventHandler(echoHandler(&seen))

	out, err := h(context.Background(), []byte(`{
		"version": "2.0",
		"rawPath": "/users",
		"body": "e30=",
		"isBase64Encoded": true,
		"requestContext": {"requestId": "req-9", "http": {"method": "POST"}}
	}`))
	require.NoError(t, err)

	resp, ok := out.(events.APIGatewayV2HTTPResponse)
	require.True(t, ok, "payload 2.0 is answered with an HTTP API response")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "POST", seen.Method)
	assert.Equal(t, "{}", string(seen.Body))
	assert.Equal(t, "req-9", seen.RequestID)
}

func TestEventHandler_GeneratesRequestID(t *testing.T) {
	var seen *Request
	h := EventHandler(echoHandler(&seen))

	_, err := h(context.Background(), []byte(`{"httpMethod": "GET"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, seen.RequestID)
}

func TestEventHandler_BadBody(t *testing.T) {
	called := false
	h := EventHandler(func(ctx context.Context, req *Request) *Response {
		called = true
		return &Response{StatusCode: http.StatusOK}
	})

	out, err := h(context.Background(), []byte(`{"httpMethod": "POST", "body": "%%%", "isBase64Encoded": true}`))
	require.NoError(t, err)
	resp := out.(events.APIGatewayProxyResponse)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Body, "Error: failed to decode base64 body")
	assert.False(t, called)

	_, err = h(context.Background(), []byte(`not json`))
	assert.Error(t, err)
}
