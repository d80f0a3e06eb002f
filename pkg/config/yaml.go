package config

import (
	"bytes"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// DecodeStrict decodes YAML into out and rejects keys out does not declare.
// Every unknown-key and type problem yaml.v3 reports ends up in one
// DecodeError; an empty document leaves out untouched.
func DecodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(out)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return errors.NewDecodeError("yaml", strings.Join(typeErr.Errors, "; "), err)
	}
	return errors.NewDecodeError("yaml", "", err)
}
