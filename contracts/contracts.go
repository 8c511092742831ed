/*
Package contracts provides access to compiled custody contracts: it reads
NEF and manifest files produced by NeoGo compiler and compiles contract
sources.
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/nspcc-dev/neo-go/cli/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/compiler"
	"github.com/nspcc-dev/neo-go/pkg/config"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

const (
	nefName      = "contract.nef"
	manifestName = "manifest.json"
	configName   = "config.yml"

	// compilerVersion is written into NEF when the binary is built without
	// NeoGo version set.
	compilerVersion = "0.102.0"
)

// Contract groups information about Neo contract.
type Contract struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	errInvalidNEF      = errors.New("invalid NEF")
	errInvalidManifest = errors.New("invalid manifest")
)

// ReadDir reads compiled contract from the directory containing
// 'contract.nef' and 'manifest.json' files.
func ReadDir(dir string) (Contract, error) {
	return readContractFromDir(os.DirFS(dir), ".")
}

// Compile compiles Go contract sources from the given directory. Manifest
// options are taken from 'config.yml' file located in the same directory.
func Compile(srcDir string) (Contract, error) {
	var c Contract

	if config.Version == "" {
		// nef.NewFile() cares about version a lot.
		config.Version = compilerVersion
	}

	ne, di, err := compiler.CompileWithOptions(srcDir, nil, &compiler.Options{})
	if err != nil {
		return c, fmt.Errorf("compile %s: %w", srcDir, err)
	}

	conf, err := smartcontract.ParseContractConfig(filepath.Join(srcDir, configName))
	if err != nil {
		return c, fmt.Errorf("parse contract config: %w", err)
	}

	o := &compiler.Options{}
	o.Name = conf.Name
	o.ContractEvents = conf.Events
	o.ContractSupportedStandards = conf.SupportedStandards
	o.Permissions = make([]manifest.Permission, len(conf.Permissions))
	for i := range conf.Permissions {
		o.Permissions[i] = manifest.Permission(conf.Permissions[i])
	}
	o.SafeMethods = conf.SafeMethods

	m, err := compiler.CreateManifest(di, o)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	c.NEF = *ne
	c.Manifest = *m

	return c, nil
}

func readContractFromDir(_fs fs.FS, dir string) (Contract, error) {
	var c Contract

	// fs.FS always uses "/", so filepath.Join() is not applicable.
	fNEF, err := _fs.Open(path.Join(dir, nefName))
	if err != nil {
		return c, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := _fs.Open(path.Join(dir, manifestName))
	if err != nil {
		return c, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	bReader := io.NewBinReaderFromIO(fNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidNEF, bReader.Err)
	}

	err = json.NewDecoder(fManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	return c, nil
}
