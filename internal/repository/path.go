package repository

import (
	"fmt"
	"strings"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// Path - путь в документном хранилище.
// Нечетная длина - коллекция, четная - документ.
type Path []string

func CollectionPath(segments ...string) Path {
	return Path(segments)
}

func DocPath(segments ...string) Path {
	return Path(segments)
}

// CompanyCollection - коллекция внутри companies/{code}
func CompanyCollection(code, collection string) Path {
	return Path{entity.CollectionCompanies, code, collection}
}

func CompanyDoc(code, collection, id string) Path {
	return Path{entity.CollectionCompanies, code, collection, id}
}

func (p Path) IsCollection() bool {
	return len(p)%2 == 1
}

func (p Path) IsDocument() bool {
	return len(p) > 0 && len(p)%2 == 0
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// Group - последний сегмент коллекции, по нему ищет FindOneWhere
func (p Path) Group() string {
	if len(p) == 0 {
		return ""
	}
	if p.IsCollection() {
		return p[len(p)-1]
	}
	return p[len(p)-2]
}

// Split делит путь документа на коллекцию и id
func (p Path) Split() (Path, string) {
	return p[:len(p)-1], p[len(p)-1]
}

func (p Path) Child(segments ...string) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

func ParsePath(s string) Path {
	return Path(strings.Split(strings.Trim(s, "/"), "/"))
}

func (p Path) validate(document bool) error {
	for _, seg := range p {
		if seg == "" || strings.Contains(seg, "/") {
			return fmt.Errorf("%w: %q", ErrInvalidPath, p.String())
		}
	}
	if document && !p.IsDocument() {
		return fmt.Errorf("%w: %q is not a document path", ErrInvalidPath, p.String())
	}
	if !document && !p.IsCollection() {
		return fmt.Errorf("%w: %q is not a collection path", ErrInvalidPath, p.String())
	}
	return nil
}
