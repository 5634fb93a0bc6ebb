package convolution_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConvolution(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Convolution Suite")
}
