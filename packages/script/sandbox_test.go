package script

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func run(p Params) Result {
	if p.Timeout == 0 {
		p.Timeout = time.Second
	}
	return NewSandbox().Run(context.Background(), p)
}

func TestSandbox_ConsoleLog(t *testing.T) {
	tests := []struct {
		name string
		code string
		logs []string
	}{
		{"single", `console.log("Hello, World!");`, []string{"Hello, World!"}},
		{"multiple", "console.log(\"First\");\nconsole.log(\"Second\");", []string{"First", "Second"}},
		{"arithmetic", "const a = 10; const b = 20; console.log(a + b);", []string{"30"}},
		{"multiple arguments", `console.log("Number:", 42, "Boolean:", true);`, []string{"Number: 42 Boolean: true"}},
		{"empty code", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := run(Params{Code: tt.code})
			assert.True(t, result.Success)
			assert.Empty(t, result.Error)
			assert.Equal(t, tt.logs, result.Logs)
			assert.Nil(t, result.GlobalVariableChanges)
		})
	}
}

func TestSandbox_Failures(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		contains string
	}{
		{"syntax error", "const x = ;", ""},
		{"runtime error", `throw new Error("Runtime error");`, "Runtime error"},
		{"no require", `const fs = require("fs");`, "require"},
		{"no process", `console.log(process.cwd());`, "process"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := run(Params{Code: tt.code})
			assert.False(t, result.Success)
			assert.NotEmpty(t, result.Error)
			assert.Contains(t, result.Error, tt.contains)
		})
	}
}

func TestSandbox_ErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"error object", `throw new Error("boom");`, "boom"},
		{"thrown string", `throw "plain";`, "plain"},
		{"object without message", `throw {code: 1};`, "[object Object]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := run(Params{Code: tt.code})
			assert.False(t, result.Success)
			assert.Equal(t, tt.want, result.Error)
		})
	}
}

func TestSandbox_Timeout(t *testing.T) {
	start := time.Now()
	result := run(Params{Code: "while(true) {}", Timeout: 100 * time.Millisecond})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSandbox_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	result := NewSandbox().Run(ctx, Params{Code: "while(true) {}", Timeout: 10 * time.Second})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "interrupted")
}

func TestSandbox_GlobalSet(t *testing.T) {
	t.Run("records changes", func(t *testing.T) {
		result := run(Params{
			Code:           "client.global.set(\"token\", \"abc123\");\nclient.global.set(\"key\", \"v1\");\nclient.global.set(\"key\", \"v2\");\nclient.global.set(\"n\", 42);",
			CollectionPath: "/test/collection",
		})
		assert.True(t, result.Success)
		assert.Equal(t, map[string]string{"token": "abc123", "key": "v2", "n": "42"}, result.GlobalVariableChanges)
	})

	t.Run("empty value", func(t *testing.T) {
		result := run(Params{Code: `client.global.set("token", "");`, CollectionPath: "/c"})
		assert.Equal(t, map[string]string{"token": ""}, result.GlobalVariableChanges)
	})

	t.Run("without collection", func(t *testing.T) {
		result := run(Params{Code: `client.global.set("token", "abc123");`})
		assert.True(t, result.Success)
		assert.Nil(t, result.GlobalVariableChanges)
		assert.Contains(t, result.Logs, NoCollectionWarning)
	})
}

func TestSandbox_ResponseBody(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		body        string
		contentType string
		logs        []string
	}{
		{
			name:        "plain text",
			code:        "console.log(typeof response.body); console.log(response.body);",
			body:        "Hello, World!",
			contentType: "text/plain",
			logs:        []string{"string", "Hello, World!"},
		},
		{
			name:        "json",
			code:        "console.log(typeof response.body); console.log(response.body.name); console.log(response.body.age);",
			body:        `{"name":"John","age":30}`,
			contentType: "application/json",
			logs:        []string{"object", "John", "30"},
		},
		{
			name:        "json with charset",
			code:        "console.log(response.body.status);",
			body:        `{"status":"success"}`,
			contentType: "application/json; charset=utf-8",
			logs:        []string{"success"},
		},
		{
			name:        "suffix json",
			code:        "console.log(response.body.data);",
			body:        `{"data":"test"}`,
			contentType: "application/vnd.api+json",
			logs:        []string{"test"},
		},
		{
			name:        "json array",
			code:        "console.log(Array.isArray(response.body)); console.log(response.body.length); console.log(response.body[0]);",
			body:        "[1,2,3]",
			contentType: "application/json",
			logs:        []string{"true", "3", "1"},
		},
		{
			name:        "invalid json falls back to string",
			code:        "console.log(typeof response.body); console.log(response.body);",
			body:        "not valid json{",
			contentType: "application/json",
			logs:        []string{"string", "not valid json{"},
		},
		{
			name:        "empty body",
			code:        "console.log(response.body); console.log(typeof response.body);",
			contentType: "text/plain",
			logs:        []string{"", "string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := run(Params{Code: tt.code, ResponseBody: tt.body, ResponseContentType: tt.contentType})
			assert.True(t, result.Success, result.Error)
			assert.Equal(t, tt.logs, result.Logs)
		})
	}
}

func TestSandbox_ExtractToGlobals(t *testing.T) {
	result := run(Params{
		Code: `const token = response.body.token;
const userId = response.body.user.id;
client.global.set("authToken", token);
client.global.set("userId", userId);
console.log("Stored:", token, userId);`,
		ResponseBody:        `{"token":"jwt-abc","user":{"id":"123","name":"John"}}`,
		ResponseContentType: "application/json",
		CollectionPath:      "/test/collection",
	})

	assert.True(t, result.Success)
	assert.Equal(t, []string{"Stored: jwt-abc 123"}, result.Logs)
	assert.Equal(t, map[string]string{"authToken": "jwt-abc", "userId": "123"}, result.GlobalVariableChanges)
}

func TestIsJSONContentType(t *testing.T) {
	assert.True(t, IsJSONContentType("application/json"))
	assert.True(t, IsJSONContentType("application/problem+json"))
	assert.False(t, IsJSONContentType("text/html"))
}
