package ffmpeg

import (
	"context"
	"errors"
	"testing"

	"github.com/jipraks/shortclipper/internal/types"
)

func TestPortraitCropWidth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		w, h int
		want int
	}{
		{name: "1080p", w: 1920, h: 1080, want: 606},
		{name: "4k", w: 3840, h: 2160, want: 1214},
		{name: "square source", w: 720, h: 720, want: 404},
		{name: "narrower than 9:16 crop", w: 400, h: 1080, want: 400},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := portraitCropWidth(tc.w, tc.h)
			if got != tc.want {
				t.Fatalf("portraitCropWidth(%d, %d) = %d, want %d", tc.w, tc.h, got, tc.want)
			}
			if got%2 != 0 {
				t.Fatalf("crop width must be even, got %d", got)
			}
		})
	}
}

func TestCropXExpr(t *testing.T) {
	t.Parallel()

	if got := cropXExpr(nil); got != "(iw-ow)/2" {
		t.Fatalf("empty windows: %q", got)
	}
	one := cropXExpr([]types.CropWindow{{Start: 0, End: 10, X: 120}})
	if one != "120" {
		t.Fatalf("single window: %q", one)
	}
	multi := cropXExpr([]types.CropWindow{
		{Start: 0, End: 4, X: 100},
		{Start: 4, End: 9, X: 300},
		{Start: 9, End: 15, X: 50},
	})
	want := "if(lt(t\\,4.000)\\,100\\,if(lt(t\\,9.000)\\,300\\,50))"
	if multi != want {
		t.Fatalf("multi window:\n got %q\nwant %q", multi, want)
	}
}

func TestWrapRunErr_PrefersCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := wrapRunErr(ctx, "cut clip", errors.New("signal: killed"), "garbage")
	if !types.IsCancelled(err) {
		t.Fatalf("cancelled run must surface as cancellation, got %v", err)
	}

	err = wrapRunErr(context.Background(), "cut clip", errors.New("exit status 1"), "some stderr")
	if types.IsCancelled(err) {
		t.Fatalf("real failure must not look cancelled")
	}
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestEscapeFilterPath(t *testing.T) {
	t.Parallel()

	got := escapeFilterPath(`C:\work\subs.ass`)
	if got != `C\:\\work\\subs.ass` {
		t.Fatalf("escaped path: %q", got)
	}
}

func TestFmtSeconds(t *testing.T) {
	t.Parallel()

	if got := fmtSeconds(12.5); got != "12.500" {
		t.Fatalf("fmtSeconds(12.5) = %q", got)
	}
	if got := fmtSeconds(0); got != "0.000" {
		t.Fatalf("fmtSeconds(0) = %q", got)
	}
}
