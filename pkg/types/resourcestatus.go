// Copyright 2016 The ksched Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

// ResourceStatus bundles the bits of bookkeeping the scheduler needs for a
// registered resource beyond its raw descriptor.
type ResourceStatus struct {
	Descriptor    *ResourceDescriptor
	TopologyNode  *ResourceTopologyNodeDescriptor
	EndpointURI   string
	LastHeartbeat uint64
}

// CreateTopLevelResourceStatus builds the cluster-aggregator resource that
// sits above every machine in the topology. The flow graph manager does
// not call it: a new graph holds only the sink.
func CreateTopLevelResourceStatus() *ResourceStatus {
	id := NewResourceID()
	rd := &ResourceDescriptor{
		UUID:        id,
		Type:        ResourceCoordinator,
		State:       ResourceIdle,
		Schedulable: true,
		FriendlyName: "cluster_aggregator",
	}
	rtnd := &ResourceTopologyNodeDescriptor{ResourceDesc: rd}
	return &ResourceStatus{
		Descriptor:   rd,
		TopologyNode: rtnd,
		EndpointURI:  "root_resource",
	}
}
