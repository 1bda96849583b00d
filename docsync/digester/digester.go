package digester

import (
	"crypto/sha1" //nolint:gosec // git object ids are sha1
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/byte4ever/docs_sync/docsync/git"
)

// ObjectID returns the git blob object id of data:
// sha1("blob <len>\x00" + data).
func ObjectID(data []byte) string {
	ha := sha1.New() //nolint:gosec // git object ids are sha1

	ha.Write([]byte("blob " + strconv.Itoa(len(data)) + "\x00"))
	ha.Write(data)

	return hex.EncodeToString(ha.Sum(nil))
}

// BlobSHA returns the object id of content as stored
// by the remote after a CreateBlob call with encoding.
// Base64 content is decoded first.
func BlobSHA(content string, encoding git.Encoding) (string, error) {
	const errCtx = "calculating blob sha"

	switch encoding {
	case git.EncodingBase64:
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return "", fmt.Errorf("%s: %w", errCtx, err)
		}

		return ObjectID(data), nil
	case git.EncodingUTF8, "":
		return ObjectID([]byte(content)), nil
	default:
		return "", fmt.Errorf(
			"%s: unknown encoding %q", errCtx, encoding,
		)
	}
}
