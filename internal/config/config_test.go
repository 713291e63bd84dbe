//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/pkovacs/cloudkeeper/internal/config"
)

func TestParseDiffErrorPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    config.DiffErrorPolicy
		wantErr bool
	}{
		{input: "optimistic", want: config.DiffOptimistic},
		{input: "strict", want: config.DiffStrict},
		{input: "STRICT", want: config.DiffStrict},
		{input: "bogus", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := config.ParseDiffErrorPolicy(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDiffErrorPolicy(%q) expected error, got %v", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseDiffErrorPolicy(%q) unexpected error: %v", tt.input, err)
			}

			if got != tt.want {
				t.Errorf("ParseDiffErrorPolicy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSizeMismatchPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    config.SizeMismatchPolicy
		wantErr bool
	}{
		{input: "assume-different", want: config.AssumeDifferent},
		{input: "different", want: config.AssumeDifferent},
		{input: "assume-same", want: config.AssumeSame},
		{input: "same", want: config.AssumeSame},
		{input: "whatever", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := config.ParseSizeMismatchPolicy(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSizeMismatchPolicy(%q) expected error, got %v", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseSizeMismatchPolicy(%q) unexpected error: %v", tt.input, err)
			}

			if got != tt.want {
				t.Errorf("ParseSizeMismatchPolicy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPolicyRoundTrip(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	var diffPolicy config.DiffErrorPolicy

	g.Expect(diffPolicy.UnmarshalText([]byte("strict"))).To(Succeed())
	g.Expect(diffPolicy.String()).To(Equal("strict"))

	var sizePolicy config.SizeMismatchPolicy

	g.Expect(sizePolicy.UnmarshalText([]byte("assume-same"))).To(Succeed())
	g.Expect(sizePolicy.String()).To(Equal("assume-same"))
}

func validConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		SourcePath: t.TempDir(),
		CloudRoot:  t.TempDir(),
		Workers:    4,
		Retries:    5,
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	g.Expect(validConfig(t).Validate()).To(Succeed())
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(t *testing.T, cfg *config.Config)
	}{
		{
			name:   "missing source",
			mutate: func(_ *testing.T, cfg *config.Config) { cfg.SourcePath = "" },
		},
		{
			name:   "missing cloud root",
			mutate: func(_ *testing.T, cfg *config.Config) { cfg.CloudRoot = "" },
		},
		{
			name: "source does not exist",
			mutate: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				cfg.SourcePath = filepath.Join(t.TempDir(), "nope")
			},
		},
		{
			name: "cloud root does not exist",
			mutate: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				cfg.CloudRoot = filepath.Join(t.TempDir(), "nope")
			},
		},
		{
			name: "source is a file",
			mutate: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				path := filepath.Join(t.TempDir(), "file")
				if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
					t.Fatal(err)
				}

				cfg.SourcePath = path
			},
		},
		{
			name: "delivery folder is a file",
			mutate: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				path := filepath.Join(t.TempDir(), "file")
				if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
					t.Fatal(err)
				}

				cfg.DeliveryDir = path
			},
		},
		{
			name:   "zero workers",
			mutate: func(_ *testing.T, cfg *config.Config) { cfg.Workers = 0 },
		},
		{
			name:   "zero retries",
			mutate: func(_ *testing.T, cfg *config.Config) { cfg.Retries = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig(t)
			tt.mutate(t, cfg)

			if cfg.Validate() == nil {
				t.Errorf("Validate() accepted an invalid config: %s", tt.name)
			}
		})
	}
}

func TestValidateAllowsAbsentDeliveryDir(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	// The delivery folder may not exist yet; the copy path creates it
	cfg := validConfig(t)
	cfg.DeliveryDir = filepath.Join(t.TempDir(), "not-yet")

	g.Expect(cfg.Validate()).To(Succeed())
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	cfg := &config.Config{CloudRoot: "/cloud/photos"}
	cfg.ApplyDefaults()

	g.Expect(cfg.DeliveryDir).To(Equal("/cloud/photos"))
	g.Expect(cfg.LedgerPath).To(Equal(filepath.Join("/cloud/photos", ".cloudkeeper-ledger.json")))
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	cfg := &config.Config{
		CloudRoot:   "/cloud/photos",
		DeliveryDir: "/cloud/inbox",
		LedgerPath:  "/tmp/ledger.json",
	}
	cfg.ApplyDefaults()

	g.Expect(cfg.DeliveryDir).To(Equal("/cloud/inbox"))
	g.Expect(cfg.LedgerPath).To(Equal("/tmp/ledger.json"))
}
