package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/wkalt/msgdef/mcap"
	"github.com/wkalt/msgdef/util/log"
	"github.com/wkalt/msgdef/util/ros1msg"
	"golang.org/x/sync/errgroup"
)

/*
Loaders populate the registry. On disk, message types follow the ROS package
layout: the type pkg/Name lives at <pkg>/msg/Name.msg somewhere under a root.
Files outside a msg directory take their package from the enclosing directory.
*/

////////////////////////////////////////////////////////////////////////////////

const msgExtension = ".msg"

// TypeNameFromPath derives the qualified type name of a .msg file from its
// slash-separated path.
func TypeNameFromPath(p string) (string, error) {
	if path.Ext(p) != msgExtension {
		return "", fmt.Errorf("not a message file: %s", p)
	}
	dir, file := path.Split(p)
	name := strings.TrimSuffix(file, msgExtension)
	dir = strings.TrimSuffix(dir, "/")
	if path.Base(dir) == "msg" {
		dir = path.Dir(dir)
	}
	pkg := path.Base(dir)
	if pkg == "." || pkg == "/" || pkg == "" {
		return "", fmt.Errorf("cannot determine package of %s", p)
	}
	typeName := pkg + "/" + name
	if err := ros1msg.ValidateTypeName(typeName); err != nil {
		return "", fmt.Errorf("invalid message file %s: %w", p, err)
	}
	return typeName, nil
}

// LoadFile parses a single .msg file and registers it.
func (r *Registry) LoadFile(ctx context.Context, filename string) (string, error) {
	name, err := TypeNameFromPath(filepath.ToSlash(filename))
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := r.loadBytes(name, data); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", filename, err)
	}
	log.Debugw(ctx, "loaded message file", "type", name, "file", filename)
	return name, nil
}

func (r *Registry) loadBytes(name string, data []byte) error {
	seq, err := ros1msg.ParseMessageDefinition(data)
	if err != nil {
		return err
	}
	return r.Import(name, seq)
}

// LoadDirectory registers every .msg file under root, and returns the number
// of types loaded. Files are parsed concurrently. The first failure aborts the
// load, but types registered before it remain.
func (r *Registry) LoadDirectory(ctx context.Context, root string) (int, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", root, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", root)
	}
	fsys := os.DirFS(abs)
	matches, err := doublestar.Glob(fsys, "**/*"+msgExtension)
	if err != nil {
		return 0, fmt.Errorf("failed to search %s: %w", root, err)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, match := range matches {
		match := match
		name, err := TypeNameFromPath(filepath.ToSlash(abs) + "/" + match)
		if err != nil {
			return 0, err
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, match)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", match, err)
			}
			if err := r.loadBytes(name, data); err != nil {
				return fmt.Errorf("failed to load %s: %w", match, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	log.Infow(ctx, "loaded message directory", "root", root, "types", len(matches))
	return len(matches), nil
}

// LoadPackagePath loads each directory of a ROS_PACKAGE_PATH style list.
// Directories that do not exist are skipped.
func (r *Registry) LoadPackagePath(ctx context.Context, packagePath string) (int, error) {
	total := 0
	for _, dir := range filepath.SplitList(packagePath) {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			log.Warnw(ctx, "skipping missing package path entry", "dir", dir)
			continue
		}
		n, err := r.LoadDirectory(ctx, dir)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// LoadMCAP registers the ROS1 message definitions carried in the schema
// records of an MCAP file, and returns the names of the primary types loaded.
// Schemas of other encodings are ignored.
func (r *Registry) LoadMCAP(ctx context.Context, rd io.Reader) ([]string, error) {
	schemas, err := mcap.Schemas(rd)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, schema := range mcap.ROS1Schemas(schemas) {
		if err := r.loadBytes(schema.Name, schema.Data); err != nil {
			return nil, fmt.Errorf("failed to load schema %s: %w", schema.Name, err)
		}
		names = append(names, schema.Name)
	}
	log.Infow(ctx, "loaded mcap schemas", "types", len(names))
	return names, nil
}
