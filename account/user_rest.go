package account

import (
	"net/http"

	"payflow/bizerror"
	"payflow/misc"
	"payflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathUsers = "/v1/users"

func RegisterUsersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathUsers, middleWares...)
	g.GET("", handleQueryUsers)
	g.POST("", handleCreateUser)
	g.PUT(":id", handleUpdateUser)
	g.PUT("", handleUpdateBasicAuth)

	g.GET(":id/roles", handleQueryUserRoles)
	g.POST(":id/roles", handleAssignRole)
	g.DELETE(":id/roles/:role", handleUnassignRole)
}

func handleQueryUsers(c *gin.Context) {
	users, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, users)
}

func handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateUserFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleUpdateUser(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	updation := UserUpdation{}
	if err := c.ShouldBindBodyWith(&updation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateUserFunc(id, &updation, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{})
}

func handleUpdateBasicAuth(c *gin.Context) {
	updating := BasicAuthUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateBasicAuthSecret(&updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{})
}

func handleQueryUserRoles(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryUserRolesFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleAssignRole(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	body := struct {
		Role string `json:"role" binding:"required,oneof=admin aprovador gestor_centro_custo visualizador"`
	}{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	assignment := RoleAssignment{UserID: id, Role: body.Role}
	if err := AssignRoleFunc(&assignment, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{})
}

func handleUnassignRole(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	assignment := RoleAssignment{UserID: id, Role: c.Param("role")}
	if err := UnassignRoleFunc(&assignment, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusNoContent, nil)
}
