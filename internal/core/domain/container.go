package domain

import (
	"path/filepath"
	"strings"
)

// ContainerKind identifies a compressed container format.
type ContainerKind int

const (
	// ContainerUnknown means neither the extension nor the content signature
	// identified the container.
	ContainerUnknown ContainerKind = iota

	// ContainerZip is extracted by the direct ZIP reader.
	ContainerZip

	// ContainerTar, ContainerTarGz, ContainerSevenZip and ContainerRar are
	// handed to the general-purpose extraction backend.
	ContainerTar
	ContainerTarGz
	ContainerSevenZip
	ContainerRar
)

// String returns the short name of the container kind.
func (k ContainerKind) String() string {
	switch k {
	case ContainerZip:
		return "zip"
	case ContainerTar:
		return "tar"
	case ContainerTarGz:
		return "tar.gz"
	case ContainerSevenZip:
		return "7z"
	case ContainerRar:
		return "rar"
	default:
		return "unknown"
	}
}

// DetectContainer resolves the container kind, first by file extension and
// then, for an unrecognized extension, by the ZIP content signature.
func DetectContainer(name string, head []byte) ContainerKind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return ContainerTarGz
	}
	switch strings.ToLower(filepath.Ext(lower)) {
	case ".zip":
		return ContainerZip
	case ".tar":
		return ContainerTar
	case ".7z":
		return ContainerSevenZip
	case ".rar":
		return ContainerRar
	}
	if HasZipSignature(head) {
		return ContainerZip
	}
	return ContainerUnknown
}
