// Command musgen regenerates core/records_mus.gen.go, the binary codecs
// used for every record persisted in badger.
package main

import (
	"os"
	"path/filepath"
	"reflect"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/poiesic/curator/core"
)

const outputPath = "core/records_mus.gen.go"

func main() {
	if err := chdirToRoot(); err != nil {
		panic(err)
	}

	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/curator/core"),
	)
	if err != nil {
		panic(err)
	}

	if err := g.AddDefinedType(reflect.TypeFor[core.ID]()); err != nil {
		panic(err)
	}

	// Microsecond timestamps decoded as UTC, matching the order index keys.
	micro := typeops.WithTimeUnit(typeops.MicroUTC)

	err = g.AddStruct(reflect.TypeFor[core.KnowledgeDocument](),
		structops.WithField(), // ID
		structops.WithField(), // Content
		structops.WithField(), // Metadata
		structops.WithField(), // Vector
		structops.WithField(), // ContentHash
		structops.WithField(micro),
		structops.WithField(micro))
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.Checkpoint](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(micro))
	if err != nil {
		panic(err)
	}

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(outputPath, bs, 0644); err != nil {
		panic(err)
	}
}

// chdirToRoot moves to the module root when invoked via go generate from core/.
func chdirToRoot() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if filepath.Base(cwd) == "core" {
		return os.Chdir("..")
	}
	return nil
}
