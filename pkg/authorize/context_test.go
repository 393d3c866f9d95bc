package authorize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/reqctx"
)

func TestSubjectFromContext(t *testing.T) {
	t.Run("no actor", func(t *testing.T) {
		_, err := SubjectFromContext(context.Background())
		assert.ErrorIs(t, err, ErrNoSubjectInContext)
	})

	t.Run("maps user role", func(t *testing.T) {
		ctx := reqctx.WithActor(context.Background(), reqctx.Actor{UserID: ids.New(), Role: model.RoleStaff})
		sub, err := SubjectFromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, Subject(RoleClinicStaff), sub)
	})

	t.Run("invalid role", func(t *testing.T) {
		ctx := reqctx.WithActor(context.Background(), reqctx.Actor{UserID: ids.New(), Role: "janitor"})
		_, err := SubjectFromContext(ctx)
		assert.ErrorIs(t, err, ErrNoSubjectInContext)
	})
}

func TestDomainFromResource(t *testing.T) {
	assert.Equal(t, DomainSys, DomainFromResource(""))
	assert.Equal(t, ClinicDomain(testClinicID), DomainFromResource(testClinicID))
}
