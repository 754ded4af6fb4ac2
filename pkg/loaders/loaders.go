// Package loaders provides loadable.Loader implementations that fetch HTML
// fragments from a filesystem or an S3 bucket.
package loaders

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	lerrors "github.com/vango-dev/loadable/internal/errors"
	"github.com/vango-dev/loadable/pkg/loadable"
	"github.com/vango-dev/loadable/pkg/vdom"
)

// MaxFragmentSize bounds how much of a fragment is read.
const MaxFragmentSize = 4 << 20

// Fragment is a loaded chunk of trusted HTML. It mounts as raw markup inside
// a wrapper tagged with its name.
type Fragment struct {
	Name string
	HTML string
}

// Render implements vdom.Component.
func (f *Fragment) Render() *vdom.VNode {
	return f.RenderProps(nil)
}

// RenderProps implements vdom.PropsComponent. A "class" prop is applied to
// the wrapper.
func (f *Fragment) RenderProps(props vdom.Props) *vdom.VNode {
	var class vdom.Attr
	if c, ok := props["class"].(string); ok && c != "" {
		class = vdom.Class(c)
	}
	return vdom.Div(vdom.Data("loadable", f.Name), class, vdom.Raw(f.HTML))
}

// FS returns a loader reading name from fsys.
func FS(fsys fs.FS, name string) loadable.Loader[*Fragment] {
	return func(ctx context.Context) (*Fragment, error) {
		f, err := fsys.Open(name)
		if err != nil {
			return nil, fetchError(name, err)
		}
		defer f.Close()
		return readFragment(fragmentName(name), name, f)
	}
}

// File returns a loader reading the file at p.
func File(p string) loadable.Loader[*Fragment] {
	return func(ctx context.Context) (*Fragment, error) {
		f, err := os.Open(p)
		if err != nil {
			return nil, fetchError(p, err)
		}
		defer f.Close()
		return readFragment(fragmentName(p), p, f)
	}
}

// Discover lists the .html files at the root of fsys, sorted.
func Discover(fsys fs.FS) ([]string, error) {
	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ObjectGetter is the part of *s3.Client the S3 loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 returns a loader fetching bucket/key.
func S3(client ObjectGetter, bucket, key string) loadable.Loader[*Fragment] {
	source := "s3://" + bucket + "/" + key
	return func(ctx context.Context) (*Fragment, error) {
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fetchError(source, err)
		}
		defer out.Body.Close()
		return readFragment(fragmentName(key), source, out.Body)
	}
}

// ListS3 lists the .html objects under prefix, sorted by key.
func ListS3(ctx context.Context, client ObjectLister, bucket, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fetchError("s3://"+bucket+"/"+prefix, err)
		}
		for _, obj := range page.Contents {
			if k := aws.ToString(obj.Key); strings.HasSuffix(k, ".html") {
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ObjectLister is the part of *s3.Client ListS3 needs.
type ObjectLister = s3.ListObjectsV2APIClient

// ModuleName is the module identifier a fragment is registered under.
func ModuleName(p string) string {
	return "fragment/" + fragmentName(p)
}

func fragmentName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func readFragment(name, source string, r io.Reader) (*Fragment, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFragmentSize+1))
	if err != nil {
		return nil, fetchError(source, err)
	}
	if len(data) > MaxFragmentSize {
		return nil, lerrors.New("L021").WithDetailf("%s exceeds %d bytes", source, MaxFragmentSize)
	}
	return &Fragment{Name: name, HTML: string(data)}, nil
}

func fetchError(source string, err error) error {
	return lerrors.New("L021").WithDetail(fmt.Sprintf("could not read %s", source)).Wrap(err)
}
