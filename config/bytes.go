package config

import "github.com/alecthomas/units"

// Bytes is a byte count written with a unit suffix, e.g., "512KB" or
// "1MiB".  Units are powers of 1024.  It may be set from YAML or a
// command line flag.
type Bytes int64

func (b Bytes) String() string {
	return units.Base2Bytes(b).String()
}

func (b *Bytes) Set(s string) error {
	n, err := units.ParseBase2Bytes(s)
	if err != nil {
		return err
	}
	*b = Bytes(n)
	return nil
}

func (b *Bytes) Type() string {
	return "bytes"
}

func (b *Bytes) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return b.Set(s)
}

func (b Bytes) MarshalYAML() (any, error) {
	return b.String(), nil
}
