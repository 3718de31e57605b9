package classifier

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"docflow/internal/classifier/registry"
	"docflow/pkg/stageerr"
)

const testConfig = `{
  "detectors": [
    {
      "name": "lease_header_detector",
      "impl": "lease_header",
      "description": "Detects lease documents from header keywords",
      "output_type": "docType"
    },
    {
      "name": "jurisdiction_detector",
      "impl": "jurisdiction",
      "description": "Detects governing jurisdiction from state references",
      "output_type": "jurisdiction"
    }
  ]
}`

const leaseText = "LEASE AGREEMENT\n\nThis lease is governed by the laws of the State of California."

type RouterSuite struct {
	suite.Suite
	router *Router
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	reg, err := registry.Parse([]byte(testConfig))
	s.Require().NoError(err)
	s.router, err = New(reg)
	s.Require().NoError(err)
}

func (s *RouterSuite) TestNew() {
	s.Run("nil registry returns error", func() {
		_, err := New(nil)
		s.Require().Error(err)
		s.Contains(err.Error(), "registry is required")
	})
}

func (s *RouterSuite) TestClassify() {
	s.Run("runs the full detector set", func() {
		result, err := s.router.Classify(leaseText)
		s.Require().NoError(err)

		s.Len(result.Succeeded, 2)
		s.Empty(result.Failed)
		s.True(result.HasDetections())
		s.Equal(map[string]string{
			"lease_header_detector": "lease",
			"jurisdiction_detector": "CA",
		}, result.DetectedValues())
	})

	s.Run("no match is a valid non-error outcome", func() {
		result, err := s.router.Classify("an invoice with no lease or state language")
		s.Require().NoError(err)

		s.Len(result.Succeeded, 2)
		s.Empty(result.Failed)
		s.False(result.HasDetections())
		s.Empty(result.DetectedValues())
	})

	s.Run("empty text rejected", func() {
		_, err := s.router.Classify("")
		s.Require().Error(err)
		s.True(stageerr.HasCode(err, stageerr.CodeValidation))
	})

	s.Run("whitespace-only text rejected", func() {
		_, err := s.router.Classify("   \n\t  ")
		s.Require().Error(err)
		s.True(stageerr.HasCode(err, stageerr.CodeValidation))
	})

	s.Run("records character length of input", func() {
		result, err := s.router.Classify(leaseText)
		s.Require().NoError(err)
		s.Equal(len(leaseText), result.TextLength)
	})
}

func (s *RouterSuite) TestClassifySubset() {
	s.Run("runs only the named detectors", func() {
		result, err := s.router.ClassifySubset(leaseText, []string{"jurisdiction_detector"})
		s.Require().NoError(err)

		s.Len(result.Succeeded, 1)
		s.True(result.Succeeded["jurisdiction_detector"])
		s.Equal(map[string]string{"jurisdiction_detector": "CA"}, result.DetectedValues())
	})

	s.Run("empty subset rejected", func() {
		_, err := s.router.ClassifySubset(leaseText, nil)
		s.Require().Error(err)
		s.True(stageerr.HasCode(err, stageerr.CodeValidation))
	})

	s.Run("unknown detector name rejected, registry unchanged", func() {
		_, err := s.router.ClassifySubset(leaseText, []string{"nonexistent"})
		s.Require().Error(err)
		s.True(stageerr.HasCode(err, stageerr.CodeValidation))
		s.Equal([]string{"lease_header_detector", "jurisdiction_detector"}, s.router.Names())
	})
}

func (s *RouterSuite) TestValuesByOutputType() {
	result, err := s.router.Classify(leaseText)
	s.Require().NoError(err)

	s.Equal(map[string]string{
		"docType":      "lease",
		"jurisdiction": "CA",
	}, result.ValuesByOutputType(s.router.OutputTypes()))
}
