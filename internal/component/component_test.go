package component

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
)

func mkdirs(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(r)), 0o750))
	}
}

func TestExportMacro(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"simple", "aws-cpp-sdk-s3", "AWS_S3_API="},
		{"dashed", "aws-cpp-sdk-foo-bar", "AWS_FOOBAR_API="},
		{"core", "aws-cpp-sdk-core", "AWS_CORE_API="},
		{"no prefix", "testing-resources", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportMacro(tt.in, "aws-cpp-sdk-"))
		})
	}
	assert.Empty(t, ExportMacro("aws-cpp-sdk-s3", ""))
}

func TestComponentPaths(t *testing.T) {
	c := NewCatalog("aws-cpp-sdk-core", []string{"aws-cpp-sdk-transfer"}, []string{"aws-cpp-sdk-s3"})

	core := c.Core()
	assert.Equal(t, GroupCore, core.Group)
	assert.Equal(t, "src/aws-cpp-sdk-core", core.SourceDir)
	assert.Equal(t, "docs/build/doxygen/sdk_core/aws-cpp-sdk-core", core.DocDir)

	lib, ok := c.Get("aws-cpp-sdk-transfer")
	require.True(t, ok)
	assert.Equal(t, "src/aws-cpp-sdk-transfer", lib.SourceDir)
	assert.Equal(t, "docs/build/doxygen/sdk_libraries/aws-cpp-sdk-transfer", lib.DocDir)

	client := c.Lookup("aws-cpp-sdk-s3")
	assert.Equal(t, "generated/src/aws-cpp-sdk-s3", client.SourceDir)
	assert.Equal(t, "docs/build/doxygen/generated/aws-cpp-sdk-s3", client.DocDir)

	unknown := c.Lookup("aws-cpp-sdk-unlisted")
	assert.Equal(t, GroupClients, unknown.Group)
	assert.Equal(t, "generated/src/aws-cpp-sdk-unlisted", unknown.SourceDir)
	_, ok = c.Get("aws-cpp-sdk-unlisted")
	assert.False(t, ok)

	assert.Equal(t, filepath.Join("/sdk", "src", "aws-cpp-sdk-core"), core.SourcePath("/sdk"))
}

func TestEnumerate(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"src/aws-cpp-sdk-core",
		"src/aws-cpp-sdk-transfer",
		"src/aws-cpp-sdk-queues",
		"generated/src/aws-cpp-sdk-sqs",
		"generated/src/aws-cpp-sdk-s3",
	)
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "CMakeLists.txt"), []byte("#"), 0o600))

	l, err := layout.New(root)
	require.NoError(t, err)
	c, err := Enumerate(l, "aws-cpp-sdk-core")
	require.NoError(t, err)

	assert.Equal(t, 5, c.Len())
	assert.Equal(t, []string{"aws-cpp-sdk-core"}, c.Names(GroupCore))
	assert.Equal(t, []string{"aws-cpp-sdk-queues", "aws-cpp-sdk-transfer"}, c.Names(GroupLibs))
	assert.Equal(t, []string{"aws-cpp-sdk-s3", "aws-cpp-sdk-sqs"}, c.Names(GroupClients))

	all := c.All()
	require.Len(t, all, 5)
	assert.Equal(t, "aws-cpp-sdk-core", all[0].Name)
	assert.Equal(t, GroupClients, all[4].Group)
}

func TestEnumerateWithoutGeneratedClients(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "src/aws-cpp-sdk-core")
	l, err := layout.New(root)
	require.NoError(t, err)

	c, err := Enumerate(l, "aws-cpp-sdk-core")
	require.NoError(t, err)
	assert.Empty(t, c.Group(GroupClients))
}

func TestEnumerateMissingCore(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "src/aws-cpp-sdk-transfer")
	l, err := layout.New(root)
	require.NoError(t, err)

	_, err = Enumerate(l, "aws-cpp-sdk-core")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	_, err = Enumerate(layout.Layout{Root: filepath.Join(root, "absent")}, "aws-cpp-sdk-core")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestReadSDKVersion(t *testing.T) {
	root := t.TempDir()
	core := NewCatalog("aws-cpp-sdk-core", nil, nil).Core()
	header := filepath.Join(core.SourcePath(root), filepath.FromSlash(VersionHeader))
	require.NoError(t, os.MkdirAll(filepath.Dir(header), 0o750))

	content := `#pragma once
#define AWS_SDK_VERSION_STRING "1.11.42"
#define AWS_SDK_VERSION_MAJOR 1
#define AWS_SDK_VERSION_MINOR 11
#define AWS_SDK_VERSION_PATCH 42
`
	require.NoError(t, os.WriteFile(header, []byte(content), 0o600))

	v, err := ReadSDKVersion(root, core)
	require.NoError(t, err)
	assert.Equal(t, "1.11.42", v)

	require.NoError(t, os.WriteFile(header, []byte("#define AWS_SDK_VERSION_MAJOR 1\n"), 0o600))
	_, err = ReadSDKVersion(root, core)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = ReadSDKVersion(t.TempDir(), core)
	require.Error(t, err)
}
