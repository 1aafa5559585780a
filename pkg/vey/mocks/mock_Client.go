// Package mocks provides test doubles for the vey client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	vey "github.com/vey/vey-go/pkg/vey"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// ValidateAddress provides a mock function with given fields: ctx, addr, countryCode
func (_m *MockClient) ValidateAddress(ctx context.Context, addr vey.Address, countryCode string) (*vey.ValidationResult, error) {
	ret := _m.Called(ctx, addr, countryCode)

	if len(ret) == 0 {
		panic("no return value specified for ValidateAddress")
	}

	var r0 *vey.ValidationResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, vey.Address, string) (*vey.ValidationResult, error)); ok {
		return rf(ctx, addr, countryCode)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*vey.ValidationResult)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// NormalizeAddress provides a mock function with given fields: ctx, addr, countryCode
func (_m *MockClient) NormalizeAddress(ctx context.Context, addr vey.Address, countryCode string) (*vey.Address, error) {
	ret := _m.Called(ctx, addr, countryCode)

	if len(ret) == 0 {
		panic("no return value specified for NormalizeAddress")
	}

	var r0 *vey.Address
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, vey.Address, string) (*vey.Address, error)); ok {
		return rf(ctx, addr, countryCode)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*vey.Address)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// EncodePID computes the identifier locally; it is pure and needs no stubbing.
func (_m *MockClient) EncodePID(components map[string]string) string {
	return vey.EncodePID(components)
}

// Close provides a mock function with no fields
func (_m *MockClient) Close() {
	_m.Called()
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
