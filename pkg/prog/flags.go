package prog

import "flag"

// FlagSet wraps a flag.FlagSet. Flags shared by more than one subprogram are
// registered lazily through its methods, so that each is only registered
// once.
type FlagSet struct {
	*flag.FlagSet
	json *bool
	rc   *string
}

// JSON returns a pointer to the value of the -json flag.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false,
			"show the output from -buildinfo or -version in JSON")
		fs.json = &json
	}
	return fs.json
}

// RC returns a pointer to the value of the -rc flag.
func (fs *FlagSet) RC() *string {
	if fs.rc == nil {
		var rc string
		fs.StringVar(&rc, "rc", "",
			"path to the rc file; defaults to rc.yaml in the user config directory")
		fs.rc = &rc
	}
	return fs.rc
}
