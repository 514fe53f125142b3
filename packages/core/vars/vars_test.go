package vars

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		variables map[string]string
		expected  string
	}{
		{
			name:     "no variables",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:      "simple",
			input:     "{{host}}/users",
			variables: map[string]string{"host": "api.example.com"},
			expected:  "api.example.com/users",
		},
		{
			name:      "whitespace tolerant",
			input:     "{{  host }}",
			variables: map[string]string{"host": "h"},
			expected:  "h",
		},
		{
			name:      "undefined stays literal",
			input:     "{{a}} {{missing}}",
			variables: map[string]string{"a": "1"},
			expected:  "1 {{missing}}",
		},
		{
			name:     "blank name stays literal",
			input:    "{{ }}",
			expected: "{{ }}",
		},
		{
			name:      "nested",
			input:     "{{url}}",
			variables: map[string]string{"url": "{{scheme}}://{{host}}", "scheme": "https", "host": "x.io"},
			expected:  "https://x.io",
		},
		{
			name:      "repeated reference is not a cycle",
			input:     "{{a}}{{a}}",
			variables: map[string]string{"a": "{{b}}", "b": "x"},
			expected:  "xx",
		},
		{
			name:      "nested undefined stays literal",
			input:     "{{a}}",
			variables: map[string]string{"a": "<{{b}}>"},
			expected:  "<{{b}}>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Substitute(tt.input, tt.variables)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSubstitute_DeepChain(t *testing.T) {
	variables := make(map[string]string)
	for i := 0; i < 200; i++ {
		variables[fmt.Sprintf("v%d", i)] = fmt.Sprintf("{{v%d}}", i+1)
	}
	variables["v200"] = "end"

	got, err := Substitute("{{v0}}", variables)
	require.NoError(t, err)
	assert.Equal(t, "end", got)
}

func TestSubstitute_Cycles(t *testing.T) {
	tests := []struct {
		name      string
		variables map[string]string
	}{
		{"self", map[string]string{"a": "{{a}}"}},
		{"pair", map[string]string{"a": "{{b}}", "b": "{{a}}"}},
		{"triangle", map[string]string{"a": "x{{b}}", "b": "{{c}}", "c": "{{ a }}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Substitute("start {{a}}", tt.variables)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.True(t, errors.Is(err, ErrSubstitutionCycle))

			var cycle *CycleError
			require.ErrorAs(t, err, &cycle)
			assert.Equal(t, "a", cycle.Name)
		})
	}
}

func TestSubstituteMap(t *testing.T) {
	got, err := SubstituteMap(map[string]string{"X-{{k}}": "{{v}}"}, map[string]string{"k": "Key", "v": "val"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X-Key": "val"}, got)

	_, err = SubstituteMap(map[string]string{"h": "{{a}}"}, map[string]string{"a": "{{a}}"})
	assert.ErrorIs(t, err, ErrSubstitutionCycle)
}

func TestUnresolved(t *testing.T) {
	got := Unresolved("{{a}} {{b}} {{ b }} {{c}}", map[string]string{"a": "1"})
	assert.Equal(t, []string{"b", "c"}, got)
}

func TestMerge_Precedence(t *testing.T) {
	file := parser.Parse(strings.Join([]string{
		"@shared = file",
		"@fileOnly = f",
		"### first",
		"@shared = first",
		"@sibling = first",
		"@firstOnly = 1",
		"GET http://a",
		"### second",
		"@sibling = second",
		"@secondOnly = 2",
		"GET http://b",
		"### current",
		"@local = current",
		"@shared = current",
		"GET http://c",
	}, "\n"))
	require.Len(t, file.Sections, 3)
	current := file.Sections[2]

	env := map[string]string{"shared": "env", "envOnly": "e", "sibling": "env", "local": "env"}
	globals := map[string]string{"local": "global"}

	got := Merge(file, current, env, globals)

	assert.Equal(t, "current", got["shared"])
	assert.Equal(t, "f", got["fileOnly"])
	assert.Equal(t, "env", got["sibling"])
	assert.Equal(t, "1", got["firstOnly"])
	assert.Equal(t, "2", got["secondOnly"])
	assert.Equal(t, "e", got["envOnly"])
	assert.Equal(t, "global", got["local"])
}

func TestMerge_FirstSiblingWins(t *testing.T) {
	file := parser.Parse("### a\n@x = a\nGET http://a\n### b\n@x = b\nGET http://b\n### c\nGET http://c")
	require.Len(t, file.Sections, 3)

	got := Merge(file, file.Sections[2], nil, nil)
	assert.Equal(t, "a", got["x"])
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	env := map[string]string{"a": "1"}
	file := parser.Parse("@a = 2\n### s\nGET http://x")
	_ = Merge(file, file.Sections[0], env, nil)
	assert.Equal(t, "1", env["a"])
}

func TestOptions(t *testing.T) {
	file := parser.Parse("#@timeout=100\n#@verify-ssl=false\n### s\n# @timeout = 5\nGET http://x")
	got := Options(file, file.Sections[0])
	assert.Equal(t, map[string]string{"timeout": "5", "verify-ssl": "false"}, got)
}

func TestSession(t *testing.T) {
	s := NewSession("/c")
	assert.Equal(t, "/c", s.Collection())

	s.Set("token", "abc")
	v, ok := s.Get("token")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	s.Apply(map[string]string{"a": "1", "token": "def"})
	assert.Equal(t, map[string]string{"a": "1", "token": "def"}, s.Snapshot())

	snap := s.Snapshot()
	snap["a"] = "changed"
	v, _ = s.Get("a")
	assert.Equal(t, "1", v)

	s.Delete("a")
	_, ok = s.Get("a")
	assert.False(t, ok)

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestSession_Concurrent(t *testing.T) {
	s := NewSession("/c")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set(fmt.Sprintf("k%d", i), "v")
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestSessions(t *testing.T) {
	r := NewSessions()
	a := r.Open("/a")
	a.Set("x", "1")
	assert.Same(t, a, r.Open("/a"))
	assert.NotSame(t, a, r.Open("/b"))

	r.Close("/a")
	assert.Equal(t, 0, a.Len())
	assert.NotSame(t, a, r.Open("/a"))

	b := r.Open("/b")
	b.Set("y", "2")
	r.CloseAll()
	assert.Equal(t, 0, b.Len())
}
