package s3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "explicit",
			opts: Options{PublicURL: "https://image-backend-media.s3.ap-northeast-1.amazonaws.com/", Endpoint: "s3.amazonaws.com", Bucket: "b"},
			want: "https://image-backend-media.s3.ap-northeast-1.amazonaws.com",
		},
		{
			name: "path style over tls",
			opts: Options{Endpoint: "minio.local:9000", Bucket: "media", UseSSL: true},
			want: "https://minio.local:9000/media",
		},
		{
			name: "relative public url ignored",
			opts: Options{PublicURL: "/media", Endpoint: "localhost:9000", Bucket: "media"},
			want: "http://localhost:9000/media",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, publicURL(tt.opts))
		})
	}
}
