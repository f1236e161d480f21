package s3_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/growtho/internal/adapters/blob/core"
	"github.com/okian/growtho/internal/adapters/blob/s3"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeS3 serves the HEAD, PUT, GET and ListObjectsV2 subset of path-style S3.
type fakeS3 struct {
	mu    sync.Mutex
	state map[string]string // key -> content type
}

func empty(status int, h http.Header) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(nil)), Header: h}
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.state {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>1</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k)
		}
		b.WriteString("</ListBucketResult>")
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(b.String())), Header: http.Header{"Content-Type": {"application/xml"}}}, nil
	}
	switch req.Method {
	case http.MethodHead:
		ct, ok := f.state[key]
		if !ok {
			return empty(http.StatusNotFound, http.Header{}), nil
		}
		return empty(http.StatusOK, http.Header{
			"Content-Length": {"1"},
			"Content-Type":   {ct},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
		}), nil
	case http.MethodPut:
		_, _ = io.Copy(io.Discard, req.Body)
		f.state[key] = req.Header.Get("Content-Type")
		return empty(http.StatusOK, http.Header{"ETag": {`"etag"`}}), nil
	case http.MethodGet:
		return empty(http.StatusNotFound, http.Header{}), nil
	}
	return empty(http.StatusNotImplemented, http.Header{}), nil
}

func newFakeStore(f *fakeS3) (*s3.Store, error) {
	return s3.New(context.Background(), s3.Config{
		Bucket:          "prepared",
		Endpoint:        "https://fake.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: f},
	})
}

func TestStore(t *testing.T) {
	Convey("Given an S3 store on a fake transport", t, func() {
		ctx := context.Background()
		fake := &fakeS3{state: make(map[string]string)}
		store, err := newFakeStore(fake)
		So(err, ShouldBeNil)
		So(store.Driver(), ShouldEqual, core.DriverS3)
		So(store.Bucket(), ShouldEqual, "prepared")

		Convey("When putting a new object", func() {
			info, err := store.Put(ctx, "hooman/run/conc.csv", strings.NewReader("a,b\n"), core.PutOptions{ContentType: "text/csv"})

			Convey("Then it is recorded under its key", func() {
				So(err, ShouldBeNil)
				So(info.Key, ShouldEqual, "hooman/run/conc.csv")
				So(info.ContentType, ShouldEqual, "text/csv")
				So(fake.state, ShouldContainKey, "hooman/run/conc.csv")
			})

			Convey("Then a second put of the same key is rejected", func() {
				_, err := store.Put(ctx, "hooman/run/conc.csv", strings.NewReader("x"), core.PutOptions{})
				So(errors.Is(err, core.ErrExists), ShouldBeTrue)
			})

			Convey("Then it is listed under its prefix", func() {
				_, err := store.Put(ctx, "other/run/conc.csv", strings.NewReader("x"), core.PutOptions{})
				So(err, ShouldBeNil)
				list, err := store.List(ctx, "hooman/")
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
				So(list[0].Key, ShouldEqual, "hooman/run/conc.csv")
			})
		})

		Convey("When getting a missing object", func() {
			_, _, err := store.Get(ctx, "nope")
			So(errors.Is(err, core.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a config without a bucket", t, func() {
		_, err := s3.New(context.Background(), s3.Config{Region: "eu-west-1"})
		So(errors.Is(err, s3.ErrBucketRequired), ShouldBeTrue)
	})
}
