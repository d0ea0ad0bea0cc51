// Package identity resolves the namespace and hostname reported by the
// service. Values are looked up fresh on every call so that a rotated
// environment or mounted file is picked up without a restart.
package identity

import (
	"os"

	apperrors "github.com/otherjamesbrown/color-service/internal/errors"
)

const (
	// NamespaceEnv names the variable holding the deployment namespace.
	NamespaceEnv = "NAMESPACE"
	// HostnameEnv names the variable holding the pod or host name.
	HostnameEnv = "HOSTNAME"

	// NamespaceFile is where Kubernetes mounts the service account namespace.
	NamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

	// UnknownNamespace is reported when NAMESPACE is not set at all.
	UnknownNamespace = "?"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ReadFileFunc has the signature of os.ReadFile.
type ReadFileFunc func(name string) ([]byte, error)

// Identity is the resolved namespace and hostname for one request.
type Identity struct {
	Namespace string
	Hostname  string
}

// Resolver looks up namespace and hostname values.
type Resolver struct {
	lookup        LookupFunc
	readFile      ReadFileFunc
	namespaceFile string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookup replaces the environment lookup.
func WithLookup(fn LookupFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.lookup = fn
		}
	}
}

// WithReadFile replaces the file reader used for the namespace override.
func WithReadFile(fn ReadFileFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.readFile = fn
		}
	}
}

// WithNamespaceFile changes the namespace override path.
func WithNamespaceFile(path string) Option {
	return func(r *Resolver) {
		r.namespaceFile = path
	}
}

// NewResolver returns a Resolver backed by the process environment and
// filesystem unless overridden by opts.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		lookup:        os.LookupEnv,
		readFile:      os.ReadFile,
		namespaceFile: NamespaceFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NamespaceFilePath returns the override path consulted by Namespace.
func (r *Resolver) NamespaceFilePath() string {
	return r.namespaceFile
}

// Namespace resolves the deployment namespace. It never fails:
//   - NAMESPACE unset yields UnknownNamespace;
//   - NAMESPACE empty yields "";
//   - NAMESPACE non-empty yields the override file contents when readable,
//     and the variable's value otherwise.
func (r *Resolver) Namespace() string {
	return Chain(UnknownNamespace,
		r.namespaceFromFile,
		r.NamespaceEnvValue,
	)
}

// namespaceFromFile only applies when NAMESPACE is set and non-empty.
func (r *Resolver) namespaceFromFile() (string, bool) {
	if v, ok := r.lookup(NamespaceEnv); !ok || v == "" {
		return "", false
	}
	contents, err := r.NamespaceOverride()
	if err != nil {
		return "", false
	}
	return contents, true
}

// NamespaceEnvValue returns the raw NAMESPACE value and whether it is set.
func (r *Resolver) NamespaceEnvValue() (string, bool) {
	return r.lookup(NamespaceEnv)
}

// NamespaceOverride reads the override file verbatim.
func (r *Resolver) NamespaceOverride() (string, error) {
	b, err := r.readFile(r.namespaceFile)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Hostname returns HOSTNAME exactly as set. An unset variable yields an error
// matching apperrors.ErrHostnameUnset.
func (r *Resolver) Hostname() (string, error) {
	v, ok := r.lookup(HostnameEnv)
	if !ok {
		return "", apperrors.New(apperrors.CodeHostnameUnset, apperrors.ErrHostnameUnset.Message)
	}
	return v, nil
}

// Resolve returns the namespace and hostname together.
func (r *Resolver) Resolve() (Identity, error) {
	host, err := r.Hostname()
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Namespace: r.Namespace(),
		Hostname:  host,
	}, nil
}
