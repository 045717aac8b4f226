package core

import (
	"fmt"
	"strings"
)

// Format is the primary file format of a 3D asset.
type Format string

const (
	FormatGLTF  Format = "gltf"
	FormatGLB   Format = "glb"
	FormatUSDZ  Format = "usdz"
	FormatBlend Format = "blend"
	FormatFBX   Format = "fbx"
	FormatOBJ   Format = "obj"
	FormatSTL   Format = "stl"
	FormatPLY   Format = "ply"
)

var formatMIME = map[Format]string{
	FormatGLTF:  "model/gltf+json",
	FormatGLB:   "model/gltf-binary",
	FormatUSDZ:  "model/vnd.usdz+zip",
	FormatBlend: "application/x-blender",
	FormatFBX:   "application/x-fbx",
	FormatOBJ:   "model/obj",
	FormatSTL:   "model/stl",
	FormatPLY:   "application/x-ply",
}

// Formats returns every known format.
func Formats() []Format {
	return []Format{FormatGLTF, FormatGLB, FormatUSDZ, FormatBlend, FormatFBX, FormatOBJ, FormatSTL, FormatPLY}
}

// ParseFormat resolves a format literal. Matching ignores case and a leading dot,
// so ".GLB" and "glb" are the same format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if _, ok := formatMIME[f]; !ok {
		return "", fmt.Errorf("unknown format %q", s)
	}
	return f, nil
}

// MIME returns the registry media type of the format.
func (f Format) MIME() string {
	return formatMIME[f]
}

// AccessLevel says who may access an asset.
type AccessLevel string

const (
	AccessPrivate          AccessLevel = "private"
	AccessGroup            AccessLevel = "group"
	AccessInstitution      AccessLevel = "institution"
	AccessConsortium       AccessLevel = "consortium"
	AccessApprovalRequired AccessLevel = "approval_required"
	AccessRestricted       AccessLevel = "restricted"
	AccessPublic           AccessLevel = "public"
)

// AccessLevels returns every known access level, most restrictive first.
func AccessLevels() []AccessLevel {
	return []AccessLevel{
		AccessPrivate,
		AccessGroup,
		AccessInstitution,
		AccessConsortium,
		AccessApprovalRequired,
		AccessRestricted,
		AccessPublic,
	}
}

// ParseAccessLevel resolves an access level literal. "Approval Required",
// "approval-required" and "approval_required" all resolve to the same level.
func ParseAccessLevel(s string) (AccessLevel, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, l := range AccessLevels() {
		if string(l) == norm {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown access level %q", s)
}
