package misc

import (
	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func BindingPathID(c *gin.Context) (types.ID, error) {
	return types.ParseID(c.Param("id"))
}
