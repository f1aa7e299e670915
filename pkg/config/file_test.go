// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/icmptrace/internal/helper"
	"github.com/telekom/icmptrace/internal/traceroute"
	"github.com/telekom/icmptrace/pkg/checks/runtime"
	tracecheck "github.com/telekom/icmptrace/pkg/checks/traceroute"
)

// wantRuntimeConfig is the content of testdata/config.yaml.
func wantRuntimeConfig() runtime.Config {
	return runtime.Config{
		Traceroute: &tracecheck.Config{
			Targets:  []traceroute.Target{{Address: "8.8.8.8"}, {Address: "one.one.one.one"}},
			Interval: time.Minute,
			Retry:    helper.RetryConfig{Count: 1, Delay: time.Second},
			Options:  traceroute.Options{MaxTTL: 16, Timeout: 2 * time.Second},
		},
	}
}

func TestNewFileLoader(t *testing.T) {
	l := NewFileLoader(&Config{Loader: LoaderConfig{File: FileLoaderConfig{Path: "config.yaml"}}}, make(chan runtime.Config, 1))

	assert.Equal(t, "config.yaml", l.config.File.Path)
	assert.NotNil(t, l.cRuntime)
	assert.NotNil(t, l.fsys)
}

func TestFileLoader_Run(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		path     string
		wantErr  bool
	}{
		{name: "loads config continuously", interval: time.Second, path: "testdata/config.yaml"},
		{name: "continuous loading disabled", interval: 0, path: "testdata/config.yaml"},
		{name: "missing file", interval: 0, path: "testdata/nonexistent.yaml", wantErr: true},
		{name: "invalid config", interval: 0, path: "testdata/invalid.yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := make(chan runtime.Config, 1)
			f := NewFileLoader(&Config{
				Loader: LoaderConfig{Type: "file", Interval: tt.interval, File: FileLoaderConfig{Path: tt.path}},
			}, result)

			errC := make(chan error, 1)
			go func() {
				errC <- f.Run(t.Context())
			}()

			if tt.wantErr {
				assert.Error(t, <-errC)
				return
			}

			got := <-result
			if diff := cmp.Diff(wantRuntimeConfig(), got); diff != "" {
				t.Errorf("unexpected runtime config (-want +got):\n%s", diff)
			}

			f.Shutdown(t.Context())
			select {
			case err := <-errC:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("file loader did not stop")
			}
		})
	}
}

// closeErrFile is a file whose Close fails.
type closeErrFile struct {
	fs.File
}

func (f closeErrFile) Close() error {
	return errors.New("failed to close file")
}

type closeErrFS struct {
	fs.FS
}

func (c closeErrFS) Open(name string) (fs.File, error) {
	f, err := c.FS.Open(name)
	if err != nil {
		return nil, err
	}
	return closeErrFile{File: f}, nil
}

func TestFileLoader_getRuntimeConfig(t *testing.T) {
	valid := []byte("traceroute:\n  targets:\n    - address: 8.8.8.8\n  interval: 10s\n")

	tests := []struct {
		name    string
		fsys    fs.FS
		want    runtime.Config
		wantErr bool
	}{
		{
			name: "valid config",
			fsys: fstest.MapFS{"config.yaml": {Data: valid}},
			want: runtime.Config{Traceroute: &tracecheck.Config{
				Targets:  []traceroute.Target{{Address: "8.8.8.8"}},
				Interval: 10 * time.Second,
			}},
		},
		{name: "empty config", fsys: fstest.MapFS{"config.yaml": {Data: []byte{}}}, want: runtime.Config{}},
		{name: "file not found", fsys: fstest.MapFS{}, wantErr: true},
		{name: "malformed config", fsys: fstest.MapFS{"config.yaml": {Data: []byte("this is not a valid yaml content")}}, wantErr: true},
		{name: "failed to close file", fsys: closeErrFS{FS: fstest.MapFS{"config.yaml": {Data: valid}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFileLoader(&Config{
				Loader: LoaderConfig{Type: "file", File: FileLoaderConfig{Path: "config/config.yaml"}},
			}, make(chan runtime.Config, 1))
			f.fsys = tt.fsys

			cfg, err := f.getRuntimeConfig(t.Context())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDecodeRuntimeConfig_ReadError(t *testing.T) {
	_, err := decodeRuntimeConfig(failingReader{})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
