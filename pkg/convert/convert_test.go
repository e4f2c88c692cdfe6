package convert

import (
	"errors"
	"reflect"
	"testing"
)

func param(name string, t reflect.Type) *Param {
	return &Param{Name: name, Type: t}
}

func TestConvertString(t *testing.T) {
	p := NewPipeline()
	v, err := p.Convert("hello", param("name", reflect.TypeOf("")), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if v != "hello" {
		t.Errorf("v = %v, want hello", v)
	}
}

func TestConvertInts(t *testing.T) {
	p := NewPipeline()

	tests := []struct {
		value string
		typ   reflect.Type
		want  any
	}{
		{"42", reflect.TypeOf(int(0)), int(42)},
		{"-7", reflect.TypeOf(int64(0)), int64(-7)},
		{"300", reflect.TypeOf(int32(0)), int32(300)},
		{"9", reflect.TypeOf(uint(0)), uint(9)},
		{"3.5", reflect.TypeOf(float64(0)), float64(3.5)},
		{"true", reflect.TypeOf(false), true},
	}
	for _, tt := range tests {
		v, err := p.Convert(tt.value, param("x", tt.typ), nil)
		if err != nil {
			t.Errorf("Convert(%q, %s): %v", tt.value, tt.typ, err)
			continue
		}
		if v != tt.want {
			t.Errorf("Convert(%q, %s) = %v (%T), want %v (%T)", tt.value, tt.typ, v, v, tt.want, tt.want)
		}
	}
}

func TestConvertFailureIsNotFound(t *testing.T) {
	p := NewPipeline()
	_, err := p.Convert("abc", param("id", reflect.TypeOf(int(0))), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error %v should wrap ErrNotFound", err)
	}
}

func TestConvertOverflowIsNotFound(t *testing.T) {
	p := NewPipeline()
	_, err := p.Convert("300", param("b", reflect.TypeOf(int8(0))), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("overflow error %v should wrap ErrNotFound", err)
	}
}

func TestConvertSliceTail(t *testing.T) {
	p := NewPipeline()
	v, err := p.Convert("a/b/c", param("rest", reflect.TypeOf([]string{})), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	got, ok := v.([]string)
	if !ok || len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("v = %v, want [a b c]", v)
	}
}

func TestParamConverterOverride(t *testing.T) {
	p := NewPipeline()
	pm := param("id", reflect.TypeOf(int(0)))
	pm.Converter = func(value string, _ *Param, _ *Task) (any, error) {
		return 99, nil
	}
	v, err := p.Convert("anything", pm, nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if v != 99 {
		t.Errorf("v = %v, want 99", v)
	}
}

func TestTaskConverterOverride(t *testing.T) {
	p := NewPipeline()
	task := &Task{
		Module:   "polls/index",
		Function: "process",
		Converter: func(value string, _ *Param, _ *Task) (any, error) {
			return "converted:" + value, nil
		},
	}
	v, err := p.Convert("x", param("q", reflect.TypeOf("")), task)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if v != "converted:x" {
		t.Errorf("v = %v", v)
	}
}

func TestRegisteredTypeConverter(t *testing.T) {
	type userID int
	p := NewPipeline()
	p.Register(reflect.TypeOf(userID(0)), func(value string, _ *Param, _ *Task) (any, error) {
		return userID(len(value)), nil
	})
	v, err := p.Convert("abcd", param("id", reflect.TypeOf(userID(0))), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if v != userID(4) {
		t.Errorf("v = %v, want 4", v)
	}
}

func TestParamString(t *testing.T) {
	pm := &Param{Name: "id", Type: reflect.TypeOf(int(0)), Default: 5, HasDefault: true}
	s := pm.String()
	if s == "" {
		t.Error("String() should not be empty")
	}
}
