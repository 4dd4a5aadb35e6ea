package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/pos-api/pkg/jwt"
)

func TestGenerateParse_ConservaActor(t *testing.T) {
	actor := pkgjwt.Actor{UserID: "u1", BranchID: "b1", CompanyID: "c1", Role: "cashier"}
	tok, err := pkgjwt.Generate("secret", actor, "pos-api", 5)
	require.NoError(t, err)

	got, err := pkgjwt.Parse("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("secret", pkgjwt.Actor{UserID: "u1"}, "pos-api", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate("secret", pkgjwt.Actor{UserID: "u1"}, "pos-api", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("secret", tok)
	assert.Error(t, err)
}

func TestGenerate_SinSecreto(t *testing.T) {
	_, err := pkgjwt.Generate("", pkgjwt.Actor{UserID: "u1"}, "pos-api", 5)
	assert.Error(t, err)
}
