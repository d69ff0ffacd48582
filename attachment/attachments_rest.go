package attachment

import (
	"net/http"

	"payflow/bizerror"
	"payflow/misc"
	"payflow/session"

	"github.com/gin-gonic/gin"
)

const (
	PathRequestAttachments = "/v1/payment-requests"
	PathAttachments        = "/v1/attachments"
)

func RegisterAttachmentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRequestAttachments, middleWares...)
	g.GET(":id/attachments", handleListAttachments)
	g.POST(":id/attachments", handleCreateAttachment)

	a := r.Group(PathAttachments, middleWares...)
	a.GET(":id", handleDownloadAttachment)
	a.DELETE(":id", handleDeleteAttachment)
}

func handleListAttachments(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := ListAttachmentsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleCreateAttachment(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	file, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	src, err := file.Open()
	if err != nil {
		panic(err)
	}
	defer src.Close()

	record, err := CreateAttachmentFunc(id, file.Filename, file.Header.Get("Content-Type"), file.Size,
		src, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleDownloadAttachment(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, body, err := DetailAttachmentFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	defer body.Close()

	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+record.FileName+`"`)
	c.DataFromReader(http.StatusOK, record.Size, contentType, body, nil)
}

func handleDeleteAttachment(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := DeleteAttachmentFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
