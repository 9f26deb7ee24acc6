package apidocs

import (
	"admin-backend/app/server/constants"
	"context"
	"fmt"
	"github.com/getkin/kin-openapi/openapi3"
	"net/http"
)

const securitySchemeName = "bearerAuth"

var schemas = openapi3.Schemas{
	"ErrorMessage": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema())),
	"AdminInfo": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
		WithProperty("avatar", openapi3.NewBytesSchema()).
		WithProperty("disabled", openapi3.NewBoolSchema()).
		WithProperty("created_at", openapi3.NewDateTimeSchema())),
	"LoginRequest": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("password", openapi3.NewStringSchema().WithFormat("password")).
		WithRequired([]string{"username", "password"})),
	"LoginToken": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("access_token", openapi3.NewStringSchema()).
		WithProperty("token_type", openapi3.NewStringSchema()).
		WithProperty("expires_at", openapi3.NewDateTimeSchema())),
	"AdminCreateRequest": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMaxLength(200)).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email").WithMaxLength(200)).
		WithProperty("password", openapi3.NewStringSchema().WithFormat("password").
			WithMinLength(constants.PasswordMinLength)).
		WithRequired([]string{"email", "password"})),
	"AdminNameUpdateRequest": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMaxLength(200)).
		WithRequired([]string{"name"})),
	"AdminEmailUpdateRequest": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
		WithRequired([]string{"email"})),
	"AdminPasswordUpdateRequest": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("password", openapi3.NewStringSchema().WithFormat("password").
			WithMinLength(constants.PasswordMinLength)).
		WithRequired([]string{"password"})),
	"AdminStatusUpdateRequest": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("disabled", openapi3.NewBoolSchema()).
		WithRequired([]string{"disabled"})),
}

// schemaRef 引用 components 中的 schema ，同时带上值以便校验
func schemaRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, schemas[name].Value)
}

func jsonResponse(description string, ref *openapi3.SchemaRef) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(ref)
}

func errorResponse(status int) *openapi3.Response {
	return jsonResponse(http.StatusText(status), schemaRef("ErrorMessage"))
}

func adminIDParameter() *openapi3.Parameter {
	return openapi3.NewPathParameter("admin_id").WithSchema(openapi3.NewIntegerSchema().WithMin(1))
}

// AdminSpec 生成管理接口的 OpenAPI 文档
func AdminSpec(version string) (*openapi3.T, error) {
	components := openapi3.NewComponents()
	components.Schemas = schemas
	components.SecuritySchemes = openapi3.SecuritySchemes{
		securitySchemeName: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Admin API",
			Version: version,
		},
		Components: &components,
		Paths:      openapi3.NewPaths(),
		Security:   *openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate(securitySchemeName)),
	}

	p := constants.APIPrefix

	// 登录
	login := openapi3.NewOperation()
	login.OperationID = "AuthLogin"
	login.Summary = "Exchange email and password for an access token"
	login.Security = openapi3.NewSecurityRequirements()
	login.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).
		WithSchemaRef(schemaRef("LoginRequest"), []string{"application/x-www-form-urlencoded", "application/json"})}
	login.AddResponse(http.StatusOK, jsonResponse("Access token", schemaRef("LoginToken")))
	login.AddResponse(http.StatusBadRequest, errorResponse(http.StatusBadRequest))
	login.AddResponse(http.StatusUnauthorized, errorResponse(http.StatusUnauthorized))
	doc.AddOperation(p+"/login", http.MethodPost, login)

	me := openapi3.NewOperation()
	me.OperationID = "AdminInfoGetSelf"
	me.Summary = "Get the authenticated admin"
	me.AddResponse(http.StatusOK, jsonResponse("Admin", schemaRef("AdminInfo")))
	me.AddResponse(http.StatusBadRequest, errorResponse(http.StatusBadRequest))
	me.AddResponse(http.StatusUnauthorized, errorResponse(http.StatusUnauthorized))
	doc.AddOperation(p+"/me", http.MethodGet, me)

	// 列表与创建
	list := openapi3.NewOperation()
	list.OperationID = "AdminList"
	list.Summary = "List admins"
	list.AddParameter(openapi3.NewQueryParameter("limit").WithSchema(openapi3.NewIntegerSchema().
		WithMin(1).WithMax(constants.PaginationMaxLimit)))
	list.AddParameter(openapi3.NewQueryParameter("offset").WithSchema(openapi3.NewIntegerSchema().WithMin(0)))
	list.AddParameter(openapi3.NewQueryParameter("name").WithSchema(openapi3.NewStringSchema()))
	adminList := openapi3.NewArraySchema()
	adminList.Items = schemaRef("AdminInfo")
	list.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Admins").WithJSONSchema(adminList))
	list.AddResponse(http.StatusBadRequest, errorResponse(http.StatusBadRequest))
	list.AddResponse(http.StatusUnauthorized, errorResponse(http.StatusUnauthorized))
	doc.AddOperation(p, http.MethodGet, list)

	create := openapi3.NewOperation()
	create.OperationID = "AdminCreate"
	create.Summary = "Create an admin"
	create.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).
		WithJSONSchemaRef(schemaRef("AdminCreateRequest"))}
	create.AddResponse(http.StatusCreated, jsonResponse("Created admin", schemaRef("AdminInfo")))
	create.AddResponse(http.StatusBadRequest, errorResponse(http.StatusBadRequest))
	create.AddResponse(http.StatusUnauthorized, errorResponse(http.StatusUnauthorized))
	create.AddResponse(http.StatusConflict, errorResponse(http.StatusConflict))
	doc.AddOperation(p, http.MethodPost, create)

	// 头像
	avatar := openapi3.NewOperation()
	avatar.OperationID = "AdminAvatarUpdate"
	avatar.Summary = "Replace an admin's avatar"
	avatar.AddParameter(openapi3.NewQueryParameter("admin_id").WithRequired(true).
		WithSchema(openapi3.NewIntegerSchema().WithMin(1)))
	avatar.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).
		WithFormDataSchema(openapi3.NewObjectSchema().
			WithProperty("avatar", openapi3.NewStringSchema().WithFormat("binary")))}
	avatar.AddResponse(http.StatusOK, jsonResponse("Updated admin", schemaRef("AdminInfo")))
	avatar.AddResponse(http.StatusBadRequest, errorResponse(http.StatusBadRequest))
	avatar.AddResponse(http.StatusNotFound, errorResponse(http.StatusNotFound))
	avatar.AddResponse(http.StatusRequestEntityTooLarge, errorResponse(http.StatusRequestEntityTooLarge))
	doc.AddOperation(p+"/avatar", http.MethodPut, avatar)

	// 单个管理员
	get := openapi3.NewOperation()
	get.OperationID = "AdminInfoGet"
	get.Summary = "Get an admin"
	get.AddParameter(adminIDParameter())
	get.AddResponse(http.StatusOK, jsonResponse("Admin", schemaRef("AdminInfo")))
	get.AddResponse(http.StatusNotFound, errorResponse(http.StatusNotFound))
	doc.AddOperation(p+"/{admin_id}", http.MethodGet, get)

	del := openapi3.NewOperation()
	del.OperationID = "AdminDelete"
	del.Summary = "Delete an admin"
	del.AddParameter(adminIDParameter())
	del.AddResponse(http.StatusNoContent, openapi3.NewResponse().WithDescription("Deleted"))
	del.AddResponse(http.StatusNotFound, errorResponse(http.StatusNotFound))
	doc.AddOperation(p+"/{admin_id}", http.MethodDelete, del)

	for _, u := range []struct {
		field, operationID, schema string
	}{
		{"name", "AdminNameUpdate", "AdminNameUpdateRequest"},
		{"email", "AdminEmailUpdate", "AdminEmailUpdateRequest"},
		{"password", "AdminPasswordUpdate", "AdminPasswordUpdateRequest"},
		{"status", "AdminStatusUpdate", "AdminStatusUpdateRequest"},
	} {
		op := openapi3.NewOperation()
		op.OperationID = u.operationID
		op.Summary = fmt.Sprintf("Update an admin's %s", u.field)
		op.AddParameter(adminIDParameter())
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).
			WithJSONSchemaRef(schemaRef(u.schema))}
		if u.field == "password" {
			op.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Password updated"))
		} else {
			op.AddResponse(http.StatusOK, jsonResponse("Updated admin", schemaRef("AdminInfo")))
		}
		op.AddResponse(http.StatusBadRequest, errorResponse(http.StatusBadRequest))
		op.AddResponse(http.StatusNotFound, errorResponse(http.StatusNotFound))
		if u.field == "email" {
			op.AddResponse(http.StatusConflict, errorResponse(http.StatusConflict))
		}
		doc.AddOperation(fmt.Sprintf("%s/{admin_id}/%s", p, u.field), http.MethodPut, op)
	}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	return doc, nil
}
