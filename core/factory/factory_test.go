package factory

import (
	"strings"
	"testing"
	"time"
)

type sinkConf struct {
	Addr    string        `json:"addr"`
	Retries int           `json:"retries"`
	Timeout time.Duration `json:"timeout"`
}

func TestRegistryCreateDecodes(t *testing.T) {
	reg := NewRegistry[sinkConf]()
	if err := reg.Register("s", func(conf map[string]any) (sinkConf, error) {
		var c sinkConf
		err := Decode(conf, &c)
		return c, err
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"addr": ":9000", "retries": "3", "timeout": "2s"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Addr != ":9000" || got.Retries != 3 || got.Timeout != 2*time.Second {
		t.Fatalf("unexpected decode %+v", got)
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	_, err := reg.Create(ModuleConfig{Type: "y"})
	if err == nil || !strings.Contains(err.Error(), "x") {
		t.Fatalf("expected unknown type error listing x, got %v", err)
	}
	if types := reg.Types(); len(types) != 1 || types[0] != "x" {
		t.Fatalf("unexpected types %v", types)
	}
}
