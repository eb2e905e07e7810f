package dip

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseDIP(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.core")
	defer teardown()
	//
	d, _, err := ParseDIP("12px")
	if err != nil {
		t.Errorf("(1) %s", err.Error())
	} else if d != 12 {
		t.Errorf("(1) expected d to be 12px, is %f", d)
	}
	//
	d, _, err = ParseDIP("0")
	if err != nil {
		t.Errorf("(2) %s", err.Error())
	} else if d != 0 {
		t.Errorf("(2) expected d to be 0, is %f", d)
	}
	//
	d, _, err = ParseDIP("72pt")
	if err != nil {
		t.Errorf("(3) %s", err.Error())
	} else if d != 96 {
		t.Errorf("(3) expected 72pt to be 96px, is %f", d)
	}
	//
	_, ispcnt, err := ParseDIP("20%")
	if err != nil {
		t.Errorf("(4) %s", err.Error())
	} else if ispcnt != true {
		t.Errorf("(4) expected percentage-marker to be true, is %v", ispcnt)
	}
}

func TestRect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.core")
	defer teardown()
	//
	r := Rect{TopL: Point{10, 10}, BotR: Point{30, 20}}
	if r.Width() != 20 || r.Height() != 10 {
		t.Errorf("expected rect to be 20x10, is %fx%f", r.Width(), r.Height())
	}
	if !r.Contains(10, 10) {
		t.Errorf("expected top-left corner to be inside")
	}
	if r.Contains(30, 20) {
		t.Errorf("expected bottom-right corner to be outside")
	}
	u := r.Union(Rect{TopL: Point{0, 15}, BotR: Point{15, 40}})
	if u.TopL.X != 0 || u.TopL.Y != 10 || u.BotR.X != 30 || u.BotR.Y != 40 {
		t.Errorf("union is %v", u)
	}
}

func TestInfinity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.core")
	defer teardown()
	//
	if !IsInfinite(Infinity) {
		t.Errorf("expected Infinity to be infinite")
	}
	if IsInfinite(1e9) {
		t.Errorf("expected 1e9 to be finite")
	}
}
