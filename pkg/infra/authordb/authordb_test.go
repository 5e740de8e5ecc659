package authordb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lsst-sqre/templatebot-aide/pkg/infra/authordb"
)

const sampleDB = `
affiliations:
  RubinObs: "Rubin Observatory Project Office, 950 N. Cherry Ave., Tucson, AZ 85719, USA"
  Orphan: "Lone Institute"
authors:
  sickj:
    name: "Sick"
    initials: "Jonathan"
    affil:
      - RubinObs
    orcid: "0000-0003-3001-676X"
  economouf:
    name: "Economou"
    initials: "Frossie"
    affil:
      - RubinObs
    orcid: "https://orcid.org/0000-0002-8333-7615"
  plainp:
    name: "Plain"
    initials: "Person"
  lonel:
    name: "Lone"
    initials: "L."
    affil:
      - Orphan
  texy:
    name: "G{\\'o}mez"
    initials: "Mar\\'ia"
    affil:
      - RubinObs
`

func TestDBGetAuthor(t *testing.T) {
	db, err := authordb.Parse([]byte(sampleDB))
	gt.NoError(t, err)

	t.Run("bare ORCID gains the URL prefix", func(t *testing.T) {
		info, err := db.GetAuthor("sickj")
		gt.NoError(t, err)
		gt.Equal(t, info.GivenName, "Jonathan")
		gt.Equal(t, info.FamilyName, "Sick")
		gt.Equal(t, info.ORCID, "https://orcid.org/0000-0003-3001-676X")
	})

	t.Run("URL ORCID passes through", func(t *testing.T) {
		info, err := db.GetAuthor("economouf")
		gt.NoError(t, err)
		gt.Equal(t, info.ORCID, "https://orcid.org/0000-0002-8333-7615")
	})

	t.Run("affiliation splits at the first comma", func(t *testing.T) {
		info, err := db.GetAuthor("sickj")
		gt.NoError(t, err)
		gt.Equal(t, info.AffiliationID, "RubinObs")
		gt.Equal(t, info.AffiliationName, "Rubin Observatory Project Office")
		gt.Equal(t, info.AffiliationAddress, "950 N. Cherry Ave., Tucson, AZ 85719, USA")
	})

	t.Run("single-part affiliation has no address", func(t *testing.T) {
		info, err := db.GetAuthor("lonel")
		gt.NoError(t, err)
		gt.Equal(t, info.AffiliationName, "Lone Institute")
		gt.Equal(t, info.AffiliationAddress, "")
	})

	t.Run("missing affiliation and orcid are fine", func(t *testing.T) {
		info, err := db.GetAuthor("plainp")
		gt.NoError(t, err)
		gt.Equal(t, info.ORCID, "")
		gt.Equal(t, info.AffiliationID, "")
	})

	t.Run("latex accents are flattened", func(t *testing.T) {
		info, err := db.GetAuthor("texy")
		gt.NoError(t, err)
		gt.Equal(t, info.GivenName, "María")
		gt.Equal(t, info.FamilyName, "Gómez")
	})

	t.Run("unknown IDs report not found", func(t *testing.T) {
		_, err := db.GetAuthor("nobody")
		gt.Error(t, err)
		gt.True(t, authordb.IsNotFound(err))
	})
}

func TestStoreGetAuthor(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleDB))
	}))
	defer srv.Close()

	store := authordb.NewStore(authordb.WithURL(srv.URL))

	info, err := store.GetAuthor(ctx, "sickj")
	gt.NoError(t, err)
	gt.Equal(t, info.FamilyName, "Sick")

	_, err = store.GetAuthor(ctx, "nobody")
	gt.True(t, authordb.IsNotFound(err))
}

func TestStoreGetAuthorHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	store := authordb.NewStore(authordb.WithURL(srv.URL))
	_, err := store.GetAuthor(context.Background(), "sickj")
	gt.Error(t, err)
	gt.True(t, !authordb.IsNotFound(err))
}
