// Command diffy runs the inline-diff web service: it accepts pairs of
// text submissions, stores them content-addressably, and serves a
// block-move-aware visual diff for each stored pair.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/inkdiff/inkdiff/pkg/db"
	httpsrv "github.com/inkdiff/inkdiff/pkg/http"
	"github.com/inkdiff/inkdiff/pkg/storage"
	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.etcd.io/bbolt"
)

type optsType struct {
	listenAddr     string
	publicURL      string
	dbFile         string
	s3Endpoint     string
	s3AccessKey    string
	s3AccessSecret string
	s3Bucket       string
	cacheMaxBytes  string
}

func defaultEnv(s, def string) string {
	v, ok := os.LookupEnv(s)
	if ok {
		return v
	}
	return def
}

func stringVar(p *string, fg, defaultValue, usage string) {
	ev := strings.ReplaceAll(strings.ToUpper(fg), "-", "_")
	flag.StringVar(p, fg, defaultEnv(ev, defaultValue), usage+". env var: "+ev)
}

func main() {
	var opts optsType
	stringVar(&opts.listenAddr, "listen-addr", ":18844", "listen address for the web server")
	stringVar(&opts.publicURL, "public-url", "localhost:18844", "url for the server, used in the curl example")
	stringVar(&opts.dbFile, "db-file", "data/db.bolt", "the file used for the database. "+
		"this will be a cache (if used together with s3) or the permanent database")
	stringVar(&opts.s3Endpoint, "s3-endpoint", "", "s3 endpoint. if unset, the bolt database is used as permanent storage")
	stringVar(&opts.s3AccessKey, "s3-access-key", "", "s3 access key")
	stringVar(&opts.s3AccessSecret, "s3-access-secret", "", "s3 access secret")
	stringVar(&opts.s3Bucket, "s3-bucket", "diffy", "s3 bucket")
	stringVar(&opts.cacheMaxBytes, "cache-max-bytes", "268435456", "maximum size in bytes of the local cache, when s3 is used as permanent storage")
	flag.Parse()

	cacheMaxBytes, err := strconv.ParseUint(opts.cacheMaxBytes, 10, 64)
	if err != nil {
		panic(fmt.Errorf("invalid -cache-max-bytes: %w", err))
	}

	// Set up database.
	bdb, err := bbolt.Open(opts.dbFile, 0o600, nil)
	if err != nil {
		panic(fmt.Errorf("db open error: %w", err))
	}
	database := &db.DB{DB: bdb}

	cache := storage.NewDBStorage(bdb, []byte("storage"))

	var store storage.Storage = cache
	if opts.s3Endpoint != "" {
		minioClient, err := minio.New(opts.s3Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(opts.s3AccessKey, opts.s3AccessSecret, ""),
			Secure: true,
		})
		if err != nil {
			panic(fmt.Errorf("minio init error: %w", err))
		}
		permanent := storage.NewMinioStorage(minioClient, opts.s3Bucket)
		cached, err := storage.NewCachedStorage(cache, permanent, cacheMaxBytes)
		if err != nil {
			panic(fmt.Errorf("cached storage init error: %w", err))
		}
		store = cached
	}

	srv := &httpsrv.Server{
		PublicURL: opts.publicURL,
		Storage:   store,
		DB:        database,
		Output:    os.Stdout,
	}

	fmt.Println("listening on", opts.listenAddr)
	panic(http.ListenAndServe(opts.listenAddr, srv.Router()))
}
