package profile

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Schema constrains user-supplied profile files. Field names match the
// Profile struct's json tags.
const Schema = `
id: string
t_short_max: int & >0
t_long_min: int & >0
t_sync_min: int & >0
min_pulse: int & >=0
max_pulse: int & >0
max_unknown_frac: number & >=0 & <=1
calibrate?: bool
load_lo: int & >=0 & <=65535
load_hi: int & >=0 & <=65535
max_line_body: int & >0
`

// LoadCUE reads a timing profile from a CUE file, validating it against
// Schema before decoding. Missing optional fields keep their zero values.
func LoadCUE(path string) (Profile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: read: %w", err)
	}
	return ParseCUE(content, path)
}

// ParseCUE validates and decodes CUE source into a Profile.
func ParseCUE(src []byte, filename string) (Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString("close({" + Schema + "})")
	if err := schema.Err(); err != nil {
		return Profile{}, fmt.Errorf("profile: schema: %w", err)
	}

	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return Profile{}, fmt.Errorf("profile: compile %s: %w", filename, err)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return Profile{}, fmt.Errorf("profile: validate %s: %w", filename, err)
	}

	var p Profile
	if err := value.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("profile: decode %s: %w", filename, err)
	}
	if p.TShortMax >= p.TLongMin {
		return Profile{}, fmt.Errorf("profile: %s: t_short_max (%d) must be below t_long_min (%d)", filename, p.TShortMax, p.TLongMin)
	}
	if p.TLongMin >= p.TSyncMin {
		return Profile{}, fmt.Errorf("profile: %s: t_long_min (%d) must be below t_sync_min (%d)", filename, p.TLongMin, p.TSyncMin)
	}
	return p, nil
}
