package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueText(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string", String("Начать"), "Начать"},
		{"empty string", String(""), ""},
		{"integer", Number(10), "10"},
		{"fraction", Number(0.8), "0.8"},
		{"zero", Number(0), "0"},
		{"false", Bool(false), "false"},
		{"true", Bool(true), "true"},
		{"null", Null(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Text())
		})
	}
}

func TestValueJSON(t *testing.T) {
	props := Props{
		"title":   String("Hi"),
		"opacity": Number(0.5),
		"visible": Bool(true),
		"extra":   Null(),
	}

	data, err := json.Marshal(props)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Hi","opacity":0.5,"visible":true,"extra":null}`, string(data))

	var decoded Props
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, props.Equal(decoded))
	assert.Equal(t, KindNumber, decoded["opacity"].Kind())
}

func TestValueJSONRejectsComposite(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &v))
}

func TestValueYAML(t *testing.T) {
	src := "a: hello\nb: 3\nc: 0.8\nd: true\ne: null\nf: '#fff'\ng: 10K+\n"

	var props Props
	require.NoError(t, yaml.Unmarshal([]byte(src), &props))

	assert.Equal(t, String("hello"), props["a"])
	assert.Equal(t, Number(3), props["b"])
	assert.Equal(t, Number(0.8), props["c"])
	assert.Equal(t, Bool(true), props["d"])
	assert.True(t, props["e"].IsNull())
	assert.Equal(t, String("#fff"), props["f"])
	assert.Equal(t, String("10K+"), props["g"])
}

func TestMergeAndClone(t *testing.T) {
	defaults := Props{"title": String("Default"), "cta": String("Go")}
	overrides := Props{"title": String("Custom")}

	merged := Merge(defaults, overrides)
	assert.Equal(t, "Custom", merged["title"].Text())
	assert.Equal(t, "Go", merged["cta"].Text())

	clone := merged.Clone()
	clone["title"] = String("Changed")
	assert.Equal(t, "Custom", merged["title"].Text())

	assert.Equal(t, []string{"cta", "title"}, merged.Keys())
	assert.NotNil(t, Props(nil).Clone())
}

func TestStylesApply(t *testing.T) {
	base := Styles{"color": "red", "fontSize": "12px"}
	next := base.Apply(Styles{"color": "", "margin": "0"})

	assert.Equal(t, Styles{"fontSize": "12px", "margin": "0"}, next)
	assert.Equal(t, "red", base["color"])
	assert.Equal(t, []string{"fontSize", "margin"}, next.Keys())
}
