package buildinfo

import (
	"fmt"
	"runtime/debug"
	"testing"

	. "github.com/panerepl/panerepl/pkg/prog/progtest"
	"github.com/panerepl/panerepl/pkg/testutil"
)

func TestProgram(t *testing.T) {
	Test(t, &Program{},
		ThatPanerepl("-version").WritesStdout(Value.Version+"\n"),
		ThatPanerepl("-version", "-json").WritesStdout(mustToJSON(Value.Version)+"\n"),

		ThatPanerepl("-buildinfo").WritesStdout(
			fmt.Sprintf(
				"Version: %v\nGo version: %v\n", Value.Version, Value.GoVersion)),
		ThatPanerepl("-buildinfo", "-json").WritesStdout(mustToJSON(Value)+"\n"),

		ThatPanerepl().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestProgram_UsesValue(t *testing.T) {
	testutil.Set(t, &Value, Type{Version: "v9.9.9", GoVersion: "go9"})
	Test(t, &Program{},
		ThatPanerepl("-version").WritesStdout("v9.9.9\n"),
		ThatPanerepl("-buildinfo").WritesStdout("Version: v9.9.9\nGo version: go9\n"),
	)
}

func TestValueJSON(t *testing.T) {
	got := mustToJSON(Type{Version: "v1", GoVersion: "go1"})
	want := `{"version":"v1","goversion":"go1"}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

var devVersionTests = []struct {
	name        string
	vcsOverride string
	bi          *debug.BuildInfo
	want        string
}{
	// next is always "0.42.0"
	{
		"no BuildInfo",
		"",
		nil,
		"0.42.0-dev.unknown",
	},
	{
		"BuildInfo with Main.Version = (devel)",
		"",
		&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
		"0.42.0-dev.unknown",
	},
	{
		"BuildInfo with tagged Main.Version",
		"",
		&debug.BuildInfo{Main: debug.Module{Version: "v0.42.0"}},
		"0.42.0",
	},
	{
		"BuildInfo with VCS data from clean checkout",
		"",
		&debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890123456"},
			{Key: "vcs.time", Value: "2022-04-01T23:59:58Z"},
			{Key: "vcs.modified", Value: "false"},
		}},
		"0.42.0-dev.0.20220401235958-123456789012",
	},
	{
		"BuildInfo with VCS data from dirty checkout",
		"",
		&debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890123456"},
			{Key: "vcs.time", Value: "2022-04-01T23:59:58Z"},
			{Key: "vcs.modified", Value: "true"},
		}},
		"0.42.0-dev.0.20220401235958-123456789012-dirty",
	},
	{
		"BuildInfo with unknown VCS timestamp format",
		"",
		&debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890123456"},
			{Key: "vcs.time", Value: "April First"},
			{Key: "vcs.modified", Value: "false"},
		}},
		"0.42.0-dev.unknown",
	},
	{
		"vcsOverride",
		"20220401235958-123456789012",
		nil,
		"0.42.0-dev.0.20220401235958-123456789012",
	},
}

func TestDevVersion(t *testing.T) {
	for _, test := range devVersionTests {
		t.Run(test.name, func(t *testing.T) {
			f := func() (*debug.BuildInfo, bool) {
				if test.bi == nil {
					return nil, false
				}
				return test.bi, true
			}
			got := devVersion("0.42.0", test.vcsOverride, f)
			if got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}
