package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const termXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<ns2:term xmlns:ns2="http://rest.cis.illinois.edu" id="120258">
  <label>Fall 2025</label>
  <subjects>
    <subject id="CS" href="https://courses.illinois.edu/cisapp/explorer/schedule/2025/fall/CS.xml">Computer Science</subject>
    <subject id="STAT" href="https://courses.illinois.edu/cisapp/explorer/schedule/2025/fall/STAT.xml">Statistics</subject>
    <subject href="nowhere">Missing Code</subject>
  </subjects>
</ns2:term>`

const cascadeXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<ns2:subject xmlns:ns2="http://rest.cis.illinois.edu" id="CS">
  <label>Computer Science</label>
  <cascadingCourses>
    <cascadingCourse id="CS 411" href="https://courses.illinois.edu/cisapp/explorer/catalog/2025/fall/CS/411.xml">
      <label>Database Systems</label>
      <description>Examination of the logical organization of databases: &lt;b&gt;SQL&lt;/b&gt;, transactions,
        and query processing.</description>
      <creditHours>3 OR 4 hours.</creditHours>
    </cascadingCourse>
    <cascadingCourse id="CS 100" href="https://courses.illinois.edu/cisapp/explorer/catalog/2025/fall/CS/100.xml">
      <label>Computer Science Orientation</label>
      <creditHours>1 hours.</creditHours>
    </cascadingCourse>
  </cascadingCourses>
</ns2:subject>`

const summaryXML = `<ns2:subject xmlns:ns2="http://rest.cis.illinois.edu" id="STAT">
  <courses>
    <course id="100" href="https://courses.illinois.edu/cisapp/explorer/catalog/2025/fall/STAT/100.xml">Statistics</course>
    <course id="STAT 200">Statistical Analysis</course>
  </courses>
</ns2:subject>`

const detailXML = `<ns2:course xmlns:ns2="http://rest.cis.illinois.edu" id="CS 411">
  <label>Database Systems</label>
  <description>Relational &amp; NoSQL databases.</description>
  <creditHours>3.5 hours.</creditHours>
</ns2:course>`

func TestParseSubjects(t *testing.T) {
	subjects, err := parseSubjects([]byte(termXML))
	require.NoError(t, err)

	require.Len(t, subjects, 2)
	assert.Equal(t, "CS", subjects[0].Code)
	assert.Equal(t, "Computer Science", subjects[0].Name)
	assert.Equal(t, "STAT", subjects[1].Code)
}

func TestParseCourses_Cascade(t *testing.T) {
	courses, err := parseCourses([]byte(cascadeXML), DefaultBaseURL, "2025", "fall", "CS")
	require.NoError(t, err)
	require.Len(t, courses, 2)

	db := courses[0]
	assert.Equal(t, "CS", db.Subject)
	assert.Equal(t, "411", db.Number)
	assert.Equal(t, "Database Systems", db.Title)
	require.NotNil(t, db.Description)
	assert.Equal(t, "Examination of the logical organization of databases: SQL, transactions, and query processing.", *db.Description)
	require.NotNil(t, db.Credits)
	assert.Equal(t, 3.0, *db.Credits)
	assert.Equal(t, "https://courses.illinois.edu/cisapp/explorer/catalog/2025/fall/CS/411.xml", db.URL)

	assert.Equal(t, "100", courses[1].Number)
	assert.Nil(t, courses[1].Description)
}

func TestParseCourses_Summary(t *testing.T) {
	courses, err := parseCourses([]byte(summaryXML), "http://catalog.test", "2025", "fall", "STAT")
	require.NoError(t, err)
	require.Len(t, courses, 2)

	assert.Equal(t, "100", courses[0].Number)
	assert.Equal(t, "Statistics", courses[0].Title)

	assert.Equal(t, "200", courses[1].Number)
	assert.Equal(t, "Statistical Analysis", courses[1].Title)
	assert.Equal(t, "http://catalog.test/catalog/2025/fall/STAT/200.xml", courses[1].URL)
}

func TestParseCourses_Malformed(t *testing.T) {
	_, err := parseCourses([]byte("<subject><courses>"), DefaultBaseURL, "2025", "fall", "CS")
	assert.Error(t, err)
}

func TestParseCourseDetail(t *testing.T) {
	course, err := parseCourseDetail([]byte(detailXML), "CS", "411", "http://catalog.test/catalog/2025/fall/CS/411")
	require.NoError(t, err)

	assert.Equal(t, "Database Systems", course.Title)
	require.NotNil(t, course.Description)
	assert.Equal(t, "Relational & NoSQL databases.", *course.Description)
	require.NotNil(t, course.Credits)
	assert.Equal(t, 3.5, *course.Credits)
	assert.Equal(t, "http://catalog.test/catalog/2025/fall/CS/411", course.URL)
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "", cleanDescription("   "))
	assert.Equal(t, "plain text", cleanDescription(" plain \n text "))
	assert.Equal(t, "Intro to ML and AI", cleanDescription("<p>Intro to <i>ML</i> and AI</p>"))
}
