package constants

// ServiceName is attached to every structured log line in deployed stages.
const ServiceName = "cyphera-rebalancer"

// Stage constants define the possible deployment/runtime environments.
const (
	StageProd  = "prod"
	StageDev   = "dev"
	StageLocal = "local"
)

// Run statuses persisted on rebalance_runs.
const (
	RunStatusRunning    = "running"
	RunStatusCompleted  = "completed"
	RunStatusHold       = "hold"
	RunStatusCorrection = "correction"
)

// Execution statuses exposed on the history feed.
const (
	ExecutionStatusSuccess = "success"
	ExecutionStatusFailed  = "failed"
)

// Default on-chain constants.
const (
	// Permit2 is deployed at the same address on every EVM chain.
	DefaultPermit2Address = "0x000000000022D473030F116dDEE9F6B43aC78BA3"
	// DelegationManager of the MetaMask delegation framework v1.3.0.
	DefaultDelegationManagerAddress = "0xdb9B1e94B5b69Df7e401DDbedE43491141047dB3"
	DefaultTimestampEnforcer        = "0x1046bb45C8d673d4ea75321280DB34899413c069"
	DefaultLimitedCallsEnforcer     = "0x04658B29F6b82ed55274221a06Fc97D318E25416"

	ZeroAddress = "0x0000000000000000000000000000000000000000"
)

// DefaultEntryPointAddress is the ERC-4337 v0.7 EntryPoint.
const DefaultEntryPointAddress = "0x0000000071727De22E5E9d8BAf0edAc6f37da032"
