package main

import (
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"

	"github.com/xenking/storefront-api/internal/domain/product"
)

// openCatalog opens a product catalog file. Files ending in .gz are
// decompressed transparently.
func openCatalog(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	gz, err := pgzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "open gzip stream")
	}
	return &gzipFile{Reader: gz, file: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// parseCatalog decodes a JSON array of {"name","price","category"}
// objects. Prices may be numbers or numeric strings.
func parseCatalog(r io.Reader) ([]product.Product, error) {
	var products []product.Product
	d := jx.Decode(r, 64*1024)
	err := d.Arr(func(d *jx.Decoder) error {
		var (
			p        product.Product
			hasPrice bool
		)
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				p.Name, err = d.Str()
			case "category":
				p.Category, err = d.Str()
			case "price":
				p.Price, err = product.DecodePrice(d)
				hasPrice = true
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}

		if p.Name == "" {
			return errors.Errorf("product %d: name is required", len(products))
		}
		if !hasPrice {
			return errors.Errorf("product %q: price is required", p.Name)
		}
		if err := product.ValidatePrice(p.Price); err != nil {
			return errors.Wrapf(err, "product %q", p.Name)
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}
	return products, nil
}
