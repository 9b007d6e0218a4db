package jsonvalue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsMemberOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zeta":1,"alpha":{"b":true,"a":null},"mid":["x",2.5]}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	require.Len(t, obj.Members, 3)
	assert.Equal(t, "zeta", obj.Members[0].Key)
	assert.Equal(t, "alpha", obj.Members[1].Key)
	assert.Equal(t, "mid", obj.Members[2].Key)

	assert.Equal(t, Number("1"), obj.Members[0].Value)
	assert.Equal(t, Array{String("x"), Number("2.5")}, obj.Members[2].Value)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"b":true,"a":null},"mid":["x",2.5]}`, string(raw))
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{`null`, KindNull},
		{`true`, KindBool},
		{`-12.5e3`, KindNumber},
		{`"hi"`, KindString},
		{`[]`, KindArray},
		{`{}`, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, input := range []string{``, `{`, `{"a":1} x`, `"a" "b"`, `hello`, `[1,]`} {
		_, err := Parse([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseLenient(t *testing.T) {
	assert.Equal(t, Object{Members: []Member{{Key: "data", Value: String("abc")}}}, ParseLenient(`  {"data":"abc"} `))
	assert.Equal(t, Number("42"), ParseLenient(`'42'`))
	assert.Equal(t, String("not json"), ParseLenient(`"not json"`))
	assert.Equal(t, String("plain"), ParseLenient("plain"))
}

func TestBuildTree(t *testing.T) {
	v, err := Parse([]byte(`{"user":{"id":7,"tags":["a","b"]},"ok":true,"note":null}`))
	require.NoError(t, err)

	root := BuildTree(v)
	assert.Nil(t, root.Key)
	assert.Equal(t, KindObject, root.Kind)
	assert.Equal(t, "Object", root.Label)
	require.Len(t, root.Children, 3)

	user := root.Children[0]
	require.NotNil(t, user.Key)
	assert.Equal(t, "user", *user.Key)
	require.Len(t, user.Children, 2)

	tags := user.Children[1]
	assert.Equal(t, "Array[2]", tags.Label)
	require.Len(t, tags.Children, 2)
	assert.Equal(t, "1", *tags.Children[1].Key)
	assert.Equal(t, "b", tags.Children[1].Value)

	assert.Equal(t, KindBool, root.Children[1].Kind)
	assert.Equal(t, "true", root.Children[1].Value)
	assert.Equal(t, KindNull, root.Children[2].Kind)
}

func TestIndent(t *testing.T) {
	v := Object{Members: []Member{{Key: "key", Value: String("token")}, {Key: "value", Value: String("abc")}}}
	assert.Equal(t, "{\n  \"key\": \"token\",\n  \"value\": \"abc\"\n}", Indent(v))
	assert.True(t, IsContainer(v))
	assert.False(t, IsContainer(String("x")))
	assert.False(t, IsContainer(nil))
}

func TestNodeJSONKeepsKind(t *testing.T) {
	v, err := Parse([]byte(`{"list":[true]}`))
	require.NoError(t, err)

	raw, err := json.Marshal(BuildTree(v))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"kind":"boolean"`)

	var back Node
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, BuildTree(v), back)

	var k Kind
	assert.Error(t, json.Unmarshal([]byte(`"decimal"`), &k))
}
