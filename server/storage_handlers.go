package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rinblog/rin/file_store"
	Logger "github.com/rinblog/rin/utils/log"
)

func AddStorageRoutes(rg *gin.RouterGroup, deps Dependencies) {
	rg.POST("", UploadHandler(deps.S3Config, deps.FileStore))
}

// UploadHandler stores the multipart "file" under a key derived from its
// content and answers with the public url. The "key" form field only
// contributes its extension.
func UploadHandler(config file_store.S3Config, store file_store.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := config.Validate(); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		if store == nil {
			c.String(http.StatusInternalServerError, "storage is not configured")
			return
		}
		if _, ok := requireUid(c); !ok {
			return
		}

		key := c.PostForm("key")
		fileHeader, err := c.FormFile("file")
		if key == "" || err != nil {
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			internalError(c, err)
			return
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			internalError(c, err)
			return
		}

		objectKey := file_store.GenerateKeyFromContent(config.Folder, key, content)
		url, err := store.Store(c.Request.Context(), objectKey, content, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			Logger.Log.WithField("key", objectKey).Error("fail to upload: ", err)
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, url)
	}
}
