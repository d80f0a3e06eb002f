package validate

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "contracts.local.nft_ownership"
	Message string // e.g., "invalid contract identifier"
	Hint    string // e.g., "expected ADDRESS.contract-name"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateDirWritable checks that path is a directory the process can create
// files in.
func ValidateDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access directory: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	tmp, err := os.CreateTemp(path, ".sihiri-write-*")
	if err != nil {
		return fmt.Errorf("directory not writable: %v", err)
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}

// ValidateHTTPURL validates an absolute http(s) URL.
func ValidateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https; got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	return nil
}

// ValidateListenAddr accepts "host:port" or ":port".
func ValidateListenAddr(addr string) error {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("expected [host]:port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("port must be a number; got %q", portStr)
	}
	return ValidatePort(port)
}

// ValidatePort validates that a port number is in the valid range.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535; got %d", port)
	}
	return nil
}

// ValidateContractID validates an "ADDRESS.contract-name" identifier and
// returns whether its address belongs to mainnet.
func ValidateContractID(id string) (mainnet bool, err error) {
	p, err := clarity.ParsePrincipal(id)
	if err != nil {
		return false, err
	}
	if !p.IsContract() {
		return false, fmt.Errorf("missing contract name")
	}
	return p.IsMainnet(), nil
}
