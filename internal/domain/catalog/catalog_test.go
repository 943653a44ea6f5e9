package catalog_test

import (
	"testing"

	"github.com/okian/benchscore/internal/domain/catalog"
	"github.com/okian/benchscore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := catalog.Default()

		Convey("Then it should list the six scenarios in report order", func() {
			ids := make([]string, 0, c.Len())
			for _, s := range c.Scenarios() {
				ids = append(ids, s.ID)
			}
			So(ids, ShouldResemble, []string{
				catalog.Login,
				catalog.GetUsers,
				catalog.GetUserIcon,
				catalog.SearchUsers,
				catalog.GetMatchGroups,
				catalog.CreateMatchGroup,
			})
		})

		Convey("Then only login and match-group creation should be writes", func() {
			for _, s := range c.Scenarios() {
				switch s.ID {
				case catalog.Login, catalog.CreateMatchGroup:
					So(s.IsWrite(), ShouldBeTrue)
				default:
					So(s.IsRead(), ShouldBeTrue)
				}
			}
		})

		Convey("When looking up a scenario", func() {
			s, ok := c.Lookup(catalog.GetMatchGroups)

			Convey("Then it should return the path template", func() {
				So(ok, ShouldBeTrue)
				So(s.Method, ShouldEqual, "GET")
				So(s.Path, ShouldEqual, "/api/v1/match-groups/members/{userId}")
				So(c.Index(catalog.GetMatchGroups), ShouldEqual, 4)
			})
		})

		Convey("When looking up an unknown id", func() {
			_, ok := c.Lookup("deleteUser")

			Convey("Then it should miss", func() {
				So(ok, ShouldBeFalse)
				So(c.Index("deleteUser"), ShouldEqual, -1)
			})
		})

		Convey("When a caller mutates the returned slice", func() {
			items := c.Scenarios()
			items[0] = model.Scenario{ID: "mutated"}

			Convey("Then the catalog should be unchanged", func() {
				So(catalog.Default().Scenarios()[0].ID, ShouldEqual, catalog.Login)
				So(c.Scenarios()[0].ID, ShouldEqual, catalog.Login)
			})
		})
	})
}
