package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type answerBody struct {
	QuestionID int64 `json:"question_id" binding:"required,gt=0"`
	OptionID   int64 `json:"option_id" binding:"required,gt=0"`
}

type pageQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func bindBody(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var dst answerBody
	return Bind(c, &dst)
}

func TestBind(t *testing.T) {
	Setup()

	assert.Nil(t, bindBody(t, `{"question_id": 3, "option_id": 31}`))

	fields := bindBody(t, `{"question_id": 3}`)
	assert.Contains(t, fields, "option_id")
	assert.NotContains(t, fields, "question_id")

	fields = bindBody(t, `{"question_id": `)
	assert.Contains(t, fields, "detail")
}

func TestBindQuery(t *testing.T) {
	Setup()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)

	var q pageQuery
	fields := BindQuery(c, &q)
	assert.Contains(t, fields, "limit")
}
