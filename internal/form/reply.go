package form

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// SaveReply is the decoded answer of the save endpoint. Exactly one of
// URL and Error is set.
type SaveReply struct {
	URL   string
	Error string
}

// ParseSaveReply decodes {"pastie_url_relative": ...} or {"error": ...}.
func ParseSaveReply(body []byte) (SaveReply, error) {
	if !gjson.ValidBytes(body) {
		return SaveReply{}, fmt.Errorf("%w: save reply is not JSON", ErrBadReply)
	}
	res := gjson.GetManyBytes(body, "error", "pastie_url_relative")
	if msg := res[0]; msg.Exists() && msg.Type != gjson.Null && msg.String() != "" {
		return SaveReply{Error: msg.String()}, nil
	}
	if !res[1].Exists() || res[1].String() == "" {
		return SaveReply{}, fmt.Errorf("%w: save reply has no pastie_url_relative", ErrBadReply)
	}
	return SaveReply{URL: res[1].String()}, nil
}

// ParseFavouriteReply returns the url field of the favourite endpoint's answer.
func ParseFavouriteReply(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: favourite reply is not JSON", ErrBadReply)
	}
	u := gjson.GetBytes(body, "url")
	if !u.Exists() || u.String() == "" {
		return "", fmt.Errorf("%w: favourite reply has no url", ErrBadReply)
	}
	return u.String(), nil
}

// ParseLibraryVersions decodes {"libraries": [...], "dependencies": [...]}.
func ParseLibraryVersions(body []byte) ([]Library, []Dependency, error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, fmt.Errorf("%w: library reply is not JSON", ErrBadReply)
	}
	root := gjson.ParseBytes(body)
	libs := root.Get("libraries")
	if !libs.IsArray() {
		return nil, nil, fmt.Errorf("%w: library reply has no libraries list", ErrBadReply)
	}

	var out []Library
	libs.ForEach(func(_, v gjson.Result) bool {
		out = append(out, Library{
			ID:        v.Get("id").String(),
			GroupName: v.Get("group_name").String(),
			Version:   v.Get("version").String(),
			Selected:  v.Get("selected").Bool(),
		})
		return true
	})
	return out, parseDependencies(root.Get("dependencies")), nil
}

// ParseDependencies decodes a bare list of dependencies.
func ParseDependencies(body []byte) ([]Dependency, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: dependency reply is not JSON", ErrBadReply)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: dependency reply is not a list", ErrBadReply)
	}
	return parseDependencies(root), nil
}

func parseDependencies(list gjson.Result) []Dependency {
	var out []Dependency
	list.ForEach(func(_, v gjson.Result) bool {
		out = append(out, Dependency{
			ID:       v.Get("id").String(),
			Name:     v.Get("name").String(),
			Selected: v.Get("selected").Bool(),
		})
		return true
	})
	return out
}
